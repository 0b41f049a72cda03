package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldservice/internal/directions"
	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
)

var (
	// ErrEmptyRoute is returned when the provider's polyline decodes to no points.
	ErrEmptyRoute = errors.New("route has no points")

	// ErrSuperseded is returned by Start when Stop or another Start ran while
	// the route was being fetched. The late route is discarded.
	ErrSuperseded = errors.New("navigation superseded")
)

// Simulator runs at most one navigation session at a time.
type Simulator struct {
	cfg       Config
	provider  directions.Provider
	newTicker TickerFunc
	now       func() time.Time
	logger    *zap.Logger

	mu         sync.Mutex
	generation uint64
	current    *Session
	status     domain.NavigationStatus
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTicker replaces the timer facility.
func WithTicker(f TickerFunc) Option {
	return func(s *Simulator) { s.newTicker = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// NewSimulator creates an idle Simulator.
func NewSimulator(cfg Config, provider directions.Provider, opts ...Option) *Simulator {
	s := &Simulator{
		cfg:       cfg.withDefaults(),
		provider:  provider,
		newTicker: NewTicker,
		now:       time.Now,
		logger:    zap.NewNop(),
		status:    domain.NavigationIdle,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the simulator configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Start fetches a route from origin to destination and begins playback.
//
// The destination must be inside the configured bounds. An out-of-bounds
// origin is replaced by the fallback coordinate. Any running session is
// stopped first. Provider failures and empty routes leave the simulator
// stopped; nothing is retried.
func (s *Simulator) Start(ctx context.Context, origin, destination domain.Coordinate) (*Session, error) {
	policy := s.cfg.Policy()
	if err := policy.ValidateDestination(destination); err != nil {
		return nil, err
	}

	resolved := policy.ResolveOrigin(origin)
	if resolved != origin {
		s.logger.Info("origin outside service area, using fallback",
			zap.Float64("lat", origin.Latitude),
			zap.Float64("lng", origin.Longitude))
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	result, err := s.provider.GetRoute(reqCtx, resolved, destination)
	if err != nil {
		s.fail(gen)
		return nil, fmt.Errorf("navigation: start: %w", err)
	}

	points := geo.DecodePolyline(result.EncodedPolyline)
	if len(points) == 0 {
		s.fail(gen)
		return nil, fmt.Errorf("navigation: start: %w", ErrEmptyRoute)
	}

	route := domain.Route{
		Points:          points,
		DistanceText:    result.DistanceText,
		DurationText:    result.DurationText,
		DistanceKm:      float64(result.DistanceMeters) / 1000,
		DurationMinutes: float64(result.DurationSeconds) / 60,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding route for superseded navigation", zap.Uint64("generation", gen))
		return nil, ErrSuperseded
	}

	session := newSession(uuid.New().String(), route, destination, s.cfg, s.now)
	s.current = session
	s.status = domain.NavigationNavigating
	go session.run(s.newTicker(s.cfg.TickInterval))

	s.logger.Info("navigation started",
		zap.String("session_id", session.ID()),
		zap.Int("points", len(points)),
		zap.String("distance", route.DistanceText))

	return session, nil
}

// Stop cancels the running session, if any, and any Start still waiting
// for its route.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.generation++
	cur := s.current
	s.current = nil
	s.status = domain.NavigationStopped
	s.mu.Unlock()

	if cur != nil {
		cur.Stop()
		s.logger.Info("navigation stopped", zap.String("session_id", cur.ID()))
	}
}

// Current returns the active session or nil.
func (s *Simulator) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Running reports whether a session is still playing back.
func (s *Simulator) Running() bool {
	cur := s.Current()
	return cur != nil && cur.State().Running()
}

// State returns the current session state, or an idle/stopped state
// positioned at the fallback coordinate when there is no session.
func (s *Simulator) State() domain.SimulationState {
	s.mu.Lock()
	cur := s.current
	status := s.status
	s.mu.Unlock()

	if cur != nil {
		return cur.State()
	}
	return domain.SimulationState{Status: status, Position: s.cfg.Fallback}
}

// Estimate returns the straight-line ETA at the configured estimate speed.
func (s *Simulator) Estimate(origin, destination domain.Coordinate) ETA {
	return Estimate(s.cfg.Policy().ResolveOrigin(origin), destination, s.cfg.EstimateSpeedKmh, s.now())
}

func (s *Simulator) fail(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.status = domain.NavigationStopped
	}
}
