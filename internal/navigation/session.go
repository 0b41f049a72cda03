package navigation

import (
	"sync"
	"time"

	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
)

// EventKind identifies a session event.
type EventKind string

const (
	// EventTick is published once per route point, index 0 first.
	EventTick EventKind = "TICK"
	// EventArrived is published once after the tick for the last point.
	EventArrived EventKind = "ARRIVED"
)

// Event is a state update published by a running session.
type Event struct {
	Kind  EventKind
	State domain.SimulationState
}

// Session owns the playback of one route. It is created by Simulator.Start
// and ends on arrival or Stop.
type Session struct {
	id       string
	route    domain.Route
	fallback domain.Coordinate
	speedKmh float64
	now      func() time.Time

	mu    sync.RWMutex
	state domain.SimulationState

	events   chan Event
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSession(id string, route domain.Route, destination domain.Coordinate, cfg Config, now func() time.Time) *Session {
	s := &Session{
		id:       id,
		route:    route,
		fallback: cfg.Fallback,
		speedKmh: cfg.NavigationSpeedKmh,
		now:      now,
		events:   make(chan Event),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	km := geo.PathDistance(route.Points, 0)
	s.state = domain.SimulationState{
		SessionID:        id,
		Status:           domain.NavigationNavigating,
		Index:            0,
		TotalPoints:      len(route.Points),
		Position:         route.Points[0],
		Destination:      destination,
		RemainingKm:      km,
		RemainingMinutes: minutesAt(km, cfg.NavigationSpeedKmh),
		UpdatedAt:        now(),
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Route returns the route being played back.
func (s *Session) Route() domain.Route { return s.route }

// Events returns the unbuffered event stream. It is closed when the
// session arrives or is stopped. Playback waits for each event to be
// received, so callers must drain it or call Stop.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed once the playback loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns a snapshot of the current simulation state.
func (s *Session) State() domain.SimulationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stop cancels playback. The ticker is stopped and the loop has exited when
// Stop returns, so no event is published afterwards. A session that has
// not arrived is reset to the fallback position with an empty route.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == domain.NavigationNavigating {
		s.state = domain.SimulationState{
			SessionID:   s.id,
			Status:      domain.NavigationStopped,
			Position:    s.fallback,
			Destination: s.state.Destination,
			UpdatedAt:   s.now(),
		}
	}
}

func (s *Session) run(ticker Ticker) {
	defer close(s.done)
	defer close(s.events)
	defer ticker.Stop()

	if !s.publish(EventTick, s.State()) {
		return
	}

	for !s.atLastPoint() {
		select {
		case <-s.stop:
			return
		case <-ticker.C():
		}

		// A tick and a stop may be ready together; stop wins.
		select {
		case <-s.stop:
			return
		default:
		}

		if !s.publish(EventTick, s.advance()) {
			return
		}
	}

	s.mu.Lock()
	s.state.Status = domain.NavigationArrived
	s.state.UpdatedAt = s.now()
	arrived := s.state
	s.mu.Unlock()

	s.publish(EventArrived, arrived)
}

func (s *Session) atLastPoint() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Index >= len(s.route.Points)-1
}

// advance moves one point forward and recomputes what remains.
func (s *Session) advance() domain.SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Index++
	s.state.Position = s.route.Points[s.state.Index]
	s.state.RemainingKm = geo.PathDistance(s.route.Points, s.state.Index)
	s.state.RemainingMinutes = minutesAt(s.state.RemainingKm, s.speedKmh)
	s.state.UpdatedAt = s.now()
	return s.state
}

// publish blocks until ev is received or the session is stopped.
func (s *Session) publish(kind EventKind, state domain.SimulationState) bool {
	select {
	case s.events <- Event{Kind: kind, State: state}:
		return true
	case <-s.stop:
		return false
	}
}
