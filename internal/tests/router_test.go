package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fieldservice/internal/app"
	"fieldservice/internal/domain"
	"fieldservice/internal/handler"
	"fieldservice/internal/navigation"
	"fieldservice/internal/repository"
	"fieldservice/internal/service"
)

type routerFixture struct {
	router    *gin.Engine
	docs      *MockDocumentStore
	locations *MockLocationStore
	clock     *FakeClock
}

// newRouterFixture wires the full HTTP stack over in-memory stores and a
// miniredis instance for idempotency keys.
func newRouterFixture(t *testing.T, tick time.Duration) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	docs := NewMockDocumentStore()
	docs.Put(repository.CollectionJobs, "J-100", domain.Document{
		"job_number": "J-100",
		"status":     "ASSIGNED",
	})
	locations := NewMockLocationStore()
	clock := NewFakeClock(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC))
	notifications := service.NewNotificationService(zap.NewNop())

	cache := service.NewJobCache(docs, NewMockKeyValueStore(), zap.NewNop())
	jobs := service.NewJobService(docs, cache, notifications, zap.NewNop())

	attendance := service.NewAttendanceService(docs, NewMockLockStore(), notifications, time.UTC, zap.NewNop())
	attendance.SetClock(clock.Now)

	cfg := navigation.DefaultConfig()
	cfg.TickInterval = tick
	provider := &MockProvider{Points: []domain.Coordinate{bedok, midway, eastCoast}}
	nav := service.NewNavigationService(cfg, provider, locations, notifications, zap.NewNop())
	nav.SetClock(clock.Now)
	t.Cleanup(nav.Shutdown)

	router := app.NewRouter(app.RouterDeps{
		JobHandler:        handler.NewJobHandler(jobs),
		WorkerHandler:     handler.NewWorkerHandler(attendance, nav),
		NavigationHandler: handler.NewNavigationHandler(nav),
		RedisClient:       client,
		Logger:            zap.NewNop(),
	})

	return &routerFixture{router: router, docs: docs, locations: locations, clock: clock}
}

func (f *routerFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// ──────────────────────────────────────────────
// 1. JOBS
// ──────────────────────────────────────────────

func TestRouter_Jobs(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, time.Hour)

	if w := f.do(http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}

	w := f.do(http.MethodGet, "/v1/jobs/J-100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get job: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if job := decode[map[string]any](t, w); job["status"] != "ASSIGNED" {
		t.Errorf("expected ASSIGNED, got %v", job["status"])
	}

	if w := f.do(http.MethodGet, "/v1/jobs/J-404", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing job: expected 404, got %d", w.Code)
	}

	w = f.do(http.MethodPost, "/v1/jobs/J-100/complete", handler.CompleteJobRequest{Remarks: "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if job := decode[map[string]any](t, w); job["status"] != "COMPLETED" || job["remarks"] != "done" {
		t.Errorf("unexpected completed job %v", job)
	}

	if w := f.do(http.MethodPost, "/v1/jobs/J-100/complete", nil); w.Code != http.StatusConflict {
		t.Errorf("second complete: expected 409, got %d", w.Code)
	}
	if w := f.do(http.MethodDelete, "/v1/jobs/J-100/cache", nil); w.Code != http.StatusNoContent {
		t.Errorf("invalidate: expected 204, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 2. ATTENDANCE AND IDEMPOTENCY
// ──────────────────────────────────────────────

func TestRouter_ClockInReplaysIdempotentRequest(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, time.Hour)

	first := f.do(http.MethodPost, "/v1/workers/w-1/clock-in", nil, "Idempotency-Key", "k-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("clock-in: expected 201, got %d: %s", first.Code, first.Body.String())
	}

	replay := f.do(http.MethodPost, "/v1/workers/w-1/clock-in", nil, "Idempotency-Key", "k-1")
	if replay.Code != http.StatusCreated {
		t.Errorf("replay: expected 201, got %d", replay.Code)
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected replayed header")
	}
	if replay.Body.String() != first.Body.String() {
		t.Errorf("replay body differs:\n%s\n%s", first.Body.String(), replay.Body.String())
	}

	if w := f.do(http.MethodPost, "/v1/workers/w-1/clock-in", nil); w.Code != http.StatusConflict {
		t.Errorf("clock-in without key: expected 409, got %d", w.Code)
	}

	f.clock.Advance(8*time.Hour + 15*time.Minute)
	w := f.do(http.MethodPost, "/v1/workers/w-1/clock-out", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clock-out: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	out := decode[handler.AttendanceResponse](t, w)
	if out.WorkedMinutes != 495 || out.ClockOutAt == nil {
		t.Errorf("unexpected clock-out response %+v", out)
	}

	w = f.do(http.MethodGet, "/v1/workers/w-1/attendance?date=2026-03-02", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attendance: expected 200, got %d", w.Code)
	}
	if got := decode[handler.AttendanceResponse](t, w); got.Status != string(domain.AttendanceClockedOut) {
		t.Errorf("expected CLOCKED_OUT, got %q", got.Status)
	}

	if w := f.do(http.MethodGet, "/v1/workers/w-1/attendance?date=02-03-2026", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}
}

// ──────────────────────────────────────────────
// 3. LOCATIONS AND NAVIGATION
// ──────────────────────────────────────────────

func TestRouter_LocationAndNearby(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, time.Hour)

	if w := f.do(http.MethodPost, "/v1/workers/w-1/location", map[string]float64{"lat": 1.35}); w.Code != http.StatusBadRequest {
		t.Errorf("missing lng: expected 400, got %d", w.Code)
	}

	w := f.do(http.MethodPost, "/v1/workers/w-1/location", handler.CoordinateJSON{Lat: bedok.Latitude, Lng: bedok.Longitude})
	if w.Code != http.StatusOK {
		t.Fatalf("location: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decode[handler.UpdateLocationResponse](t, w); resp.Ignored {
		t.Error("expected update to be stored")
	}

	w = f.do(http.MethodGet, "/v1/locations/nearby?lat=1.3550&lng=103.9450&radius_km=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("nearby: expected 200, got %d", w.Code)
	}
	nearby := decode[[]handler.NearbyWorkerResponse](t, w)
	if len(nearby) != 1 || nearby[0].WorkerID != "w-1" {
		t.Fatalf("expected w-1 nearby, got %+v", nearby)
	}
	if nearby[0].LastSeen == nil {
		t.Error("expected last_seen on nearby worker")
	} else if _, err := time.Parse(time.RFC3339, *nearby[0].LastSeen); err != nil {
		t.Errorf("expected RFC3339 last_seen, got %q", *nearby[0].LastSeen)
	}

	if w := f.do(http.MethodGet, "/v1/locations/nearby?lat=north", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad query: expected 400, got %d", w.Code)
	}

	if w := f.do(http.MethodDelete, "/v1/workers/w-1/location", nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear location: expected 204, got %d", w.Code)
	}
	if _, ok := f.locations.Location("w-1"); ok {
		t.Error("expected w-1 to be removed from the location index")
	}
}

func TestRouter_Navigation(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, time.Hour)

	w := f.do(http.MethodGet, "/v1/navigation/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("config: expected 200, got %d", w.Code)
	}
	if cfg := decode[handler.ConfigResponse](t, w); cfg.TickIntervalMs != time.Hour.Milliseconds() || cfg.LocationIntervalMs != 5000 {
		t.Errorf("unexpected config %+v", cfg)
	}

	w = f.do(http.MethodPost, "/v1/navigation/estimate", map[string]any{
		"origin":      handler.CoordinateJSON{Lat: bedok.Latitude, Lng: bedok.Longitude},
		"destination": handler.CoordinateJSON{Lat: eastCoast.Latitude, Lng: eastCoast.Longitude},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("estimate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	eta := decode[handler.EstimateResponse](t, w)
	if eta.DistanceText != "4.0 km" || eta.DurationMinutes != 6 || eta.ArrivalText != "01:06" {
		t.Errorf("unexpected estimate %+v", eta)
	}

	w = f.do(http.MethodPost, "/v1/workers/w-1/navigation", map[string]any{
		"destination": handler.CoordinateJSON{Lat: -33.8688, Lng: 151.2093},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-area destination: expected 400, got %d", w.Code)
	}

	w = f.do(http.MethodPost, "/v1/workers/w-1/navigation", map[string]any{
		"origin":      handler.CoordinateJSON{Lat: bedok.Latitude, Lng: bedok.Longitude},
		"destination": handler.CoordinateJSON{Lat: eastCoast.Latitude, Lng: eastCoast.Longitude},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	started := decode[handler.NavigationStateResponse](t, w)
	if started.Status != string(domain.NavigationNavigating) || started.TotalPoints != 3 || started.SessionID == "" {
		t.Errorf("unexpected start state %+v", started)
	}

	// Device updates are dropped while the simulator drives the position.
	w = f.do(http.MethodPost, "/v1/workers/w-1/location", handler.CoordinateJSON{Lat: midway.Latitude, Lng: midway.Longitude})
	if resp := decode[handler.UpdateLocationResponse](t, w); !resp.Ignored {
		t.Error("expected location update to be ignored while navigating")
	}

	w = f.do(http.MethodGet, "/v1/workers/w-1/navigation", nil)
	if got := decode[handler.NavigationStateResponse](t, w); got.SessionID != started.SessionID {
		t.Errorf("expected session %s, got %s", started.SessionID, got.SessionID)
	}

	w = f.do(http.MethodDelete, "/v1/workers/w-1/navigation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", w.Code)
	}
	if got := decode[handler.NavigationStateResponse](t, w); got.Status != string(domain.NavigationStopped) {
		t.Errorf("expected STOPPED, got %s", got.Status)
	}

	if w := f.do(http.MethodDelete, "/v1/workers/w-9/navigation", nil); w.Code != http.StatusNotFound {
		t.Errorf("stop unknown worker: expected 404, got %d", w.Code)
	}
}
