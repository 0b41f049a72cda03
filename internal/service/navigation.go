package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fieldservice/internal/directions"
	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
	"fieldservice/internal/navigation"
	"fieldservice/internal/redis"
)

// NavigationService runs one route simulator per worker and tracks the
// latest device position of every worker.
//
// Device positions are the default navigation origin. While a worker's
// simulation is running the simulated position is authoritative and
// device updates are ignored.
type NavigationService struct {
	cfg                 navigation.Config
	provider            directions.Provider
	locationStore       redis.LocationStoreInterface
	notificationService *NotificationService
	logger              *zap.Logger
	simOpts             []navigation.Option
	now                 func() time.Time

	mu      sync.Mutex
	workers map[string]*navigation.Simulator
	closed  bool
	wg      sync.WaitGroup
}

// NewNavigationService creates a new NavigationService. simOpts are
// applied to every per-worker simulator.
func NewNavigationService(
	cfg navigation.Config,
	provider directions.Provider,
	locationStore redis.LocationStoreInterface,
	notificationService *NotificationService,
	logger *zap.Logger,
	simOpts ...navigation.Option,
) *NavigationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("navigation")
	return &NavigationService{
		cfg:                 cfg,
		provider:            provider,
		locationStore:       locationStore,
		notificationService: notificationService,
		logger:              logger,
		simOpts:             append([]navigation.Option{navigation.WithLogger(logger)}, simOpts...),
		workers:             make(map[string]*navigation.Simulator),
		now:                 time.Now,
	}
}

// SetClock replaces time.Now for estimates. Used by tests.
func (s *NavigationService) SetClock(now func() time.Time) {
	s.now = now
}

// Config returns the navigation configuration advertised to clients.
func (s *NavigationService) Config() navigation.Config {
	return s.cfg
}

// StartNavigationRequest contains the parameters for starting navigation.
// A nil Origin means the worker's last reported position.
type StartNavigationRequest struct {
	WorkerID    string
	Origin      *domain.Coordinate
	Destination domain.Coordinate
}

// StartNavigation fetches a route and starts playback for a worker,
// replacing any navigation the worker already has.
func (s *NavigationService) StartNavigation(ctx context.Context, req StartNavigationRequest) (domain.SimulationState, error) {
	workerID := strings.TrimSpace(req.WorkerID)
	if workerID == "" {
		return domain.SimulationState{}, ErrInvalidWorkerID
	}

	sim, err := s.simulator(workerID, true)
	if err != nil {
		return domain.SimulationState{}, err
	}

	origin := s.originFor(ctx, workerID, req.Origin)

	session, err := sim.Start(ctx, origin, req.Destination)
	if err != nil {
		if shouldAlert(err) && s.notificationService != nil {
			_ = s.notificationService.NotifyNavigationFailed(ctx, workerID, err)
		}
		return sim.State(), err
	}

	// Shutdown may have run while the route was being fetched. Adding to
	// wg under mu keeps it ordered before Shutdown's Wait.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sim.Stop()
		return sim.State(), ErrServiceClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.follow(workerID, session)

	return session.State(), nil
}

// NavigationState returns the worker's current simulation state.
func (s *NavigationService) NavigationState(workerID string) domain.SimulationState {
	sim, _ := s.simulator(workerID, false)
	if sim == nil {
		return domain.SimulationState{Status: domain.NavigationIdle, Position: s.cfg.Fallback}
	}
	return sim.State()
}

// StopNavigation stops the worker's navigation.
func (s *NavigationService) StopNavigation(workerID string) (domain.SimulationState, error) {
	sim, _ := s.simulator(workerID, false)
	if sim == nil {
		return domain.SimulationState{}, ErrNoActiveSession
	}
	sim.Stop()
	return sim.State(), nil
}

// EstimateRequest contains the parameters for a straight-line estimate.
type EstimateRequest struct {
	WorkerID    string
	Origin      *domain.Coordinate
	Destination domain.Coordinate
}

// Estimate returns the "as the crow flies" ETA to a destination.
func (s *NavigationService) Estimate(ctx context.Context, req EstimateRequest) (navigation.ETA, error) {
	policy := s.cfg.Policy()
	if err := policy.ValidateDestination(req.Destination); err != nil {
		return navigation.ETA{}, err
	}

	origin := policy.ResolveOrigin(s.originFor(ctx, strings.TrimSpace(req.WorkerID), req.Origin))
	return navigation.Estimate(origin, req.Destination, s.cfg.EstimateSpeedKmh, s.now()), nil
}

// UpdateLocation records a device position. ignored is true when the
// worker is navigating and the update was dropped.
func (s *NavigationService) UpdateLocation(ctx context.Context, workerID string, position domain.Coordinate) (ignored bool, err error) {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return false, ErrInvalidWorkerID
	}
	if !geo.WorldBounds().Contains(position) {
		return false, ErrInvalidLocation
	}

	if sim, _ := s.simulator(workerID, false); sim != nil && sim.Running() {
		return true, nil
	}

	if err := s.locationStore.UpdateLocation(ctx, workerID, position.Latitude, position.Longitude); err != nil {
		return false, err
	}
	return false, nil
}

// ClearLocation takes a worker off the map: any navigation is stopped and
// the last known position is forgotten.
func (s *NavigationService) ClearLocation(ctx context.Context, workerID string) error {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return ErrInvalidWorkerID
	}
	if sim, _ := s.simulator(workerID, false); sim != nil {
		sim.Stop()
	}
	return s.locationStore.RemoveLocation(ctx, workerID)
}

// NearbyWorkers returns workers whose last position is within radiusKm.
func (s *NavigationService) NearbyWorkers(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]redis.WorkerLocation, error) {
	if !geo.WorldBounds().Contains(center) || radiusKm <= 0 {
		return nil, ErrInvalidLocation
	}
	return s.locationStore.FindNearbyWorkers(ctx, center.Latitude, center.Longitude, radiusKm)
}

// Shutdown stops every simulator and waits for their followers to exit.
func (s *NavigationService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	sims := make([]*navigation.Simulator, 0, len(s.workers))
	for _, sim := range s.workers {
		sims = append(sims, sim)
	}
	s.mu.Unlock()

	for _, sim := range sims {
		sim.Stop()
	}
	s.wg.Wait()
}

func (s *NavigationService) simulator(workerID string, create bool) (*navigation.Simulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServiceClosed
	}

	sim, ok := s.workers[workerID]
	if !ok && create {
		sim = navigation.NewSimulator(s.cfg, s.provider, s.simOpts...)
		s.workers[workerID] = sim
	}
	return sim, nil
}

// originFor picks the navigation origin: explicit, else the last device
// position, else the zero coordinate which the simulator replaces with
// the fallback.
func (s *NavigationService) originFor(ctx context.Context, workerID string, explicit *domain.Coordinate) domain.Coordinate {
	if explicit != nil {
		return *explicit
	}
	if workerID == "" || s.locationStore == nil {
		return domain.Coordinate{}
	}

	loc, found, err := s.locationStore.GetLocation(ctx, workerID)
	if err != nil {
		s.logger.Warn("failed to read worker location", zap.String("worker_id", workerID), zap.Error(err))
		return domain.Coordinate{}
	}
	if !found {
		return domain.Coordinate{}
	}
	return domain.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}
}

// follow drains a session's events. On arrival it stores the final
// position and notifies the worker.
func (s *NavigationService) follow(workerID string, session *navigation.Session) {
	defer s.wg.Done()

	for ev := range session.Events() {
		if ev.Kind != navigation.EventArrived {
			continue
		}

		ctx := context.Background()
		pos := ev.State.Position
		if err := s.locationStore.UpdateLocation(ctx, workerID, pos.Latitude, pos.Longitude); err != nil {
			s.logger.Warn("failed to store arrival position", zap.String("worker_id", workerID), zap.Error(err))
		}

		inside := navigation.WithinGeofence(pos, ev.State.Destination, s.cfg.GeofenceRadiusKm)
		if s.notificationService != nil {
			_ = s.notificationService.NotifyDestinationReached(ctx, workerID, ev.State, inside)
		}
	}
}

// shouldAlert reports whether a start failure is worth a user-facing alert.
// Validation errors are reported to the caller only; superseded starts are
// not failures.
func shouldAlert(err error) bool {
	return !errors.Is(err, navigation.ErrSuperseded) && !errors.Is(err, geo.ErrInvalidCoordinate)
}
