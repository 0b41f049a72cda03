package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fieldservice/internal/directions"
	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
	"fieldservice/internal/redis"
	"fieldservice/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DOCUMENT STORE
// ──────────────────────────────────────────────

// MockDocumentStore is an in-memory repository.DocumentStore.
type MockDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document

	// Counters for verification
	GetCallCount    int32
	SetCallCount    int32
	UpdateCallCount int32

	// Error injection
	GetError    error
	SetError    error
	UpdateError error

	// Gate, when set, blocks GetDocument until it is closed. Entered
	// receives one value per blocked call.
	Gate    chan struct{}
	Entered chan struct{}
}

// NewMockDocumentStore creates a new mock document store.
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{docs: make(map[string]domain.Document)}
}

func docKey(collection, key string) string {
	return collection + "/" + key
}

// Put stores a document directly, bypassing counters.
func (m *MockDocumentStore) Put(collection, key string, doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[docKey(collection, key)] = copyDocument(doc)
}

// Doc returns a stored document for test assertions.
func (m *MockDocumentStore) Doc(collection, key string) domain.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyDocument(m.docs[docKey(collection, key)])
}

func (m *MockDocumentStore) GetDocument(ctx context.Context, collection, key string) (domain.Document, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.Gate != nil {
		if m.Entered != nil {
			m.Entered <- struct{}{}
		}
		<-m.Gate
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[docKey(collection, key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MockDocumentStore) SetDocument(ctx context.Context, collection, key string, doc domain.Document) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.Put(collection, key, doc)
	return nil
}

func (m *MockDocumentStore) UpdateDocument(ctx context.Context, collection, key string, fields domain.Document) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docKey(collection, key)]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// copyDocument round-trips through JSON so callers see what a real store
// would return (numbers as float64, times as strings).
func copyDocument(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	out, err := domain.EncodeDocument(doc)
	if err != nil {
		panic(fmt.Sprintf("mock document store: %v", err))
	}
	return out
}

// ──────────────────────────────────────────────
// MOCK KEY-VALUE STORE
// ──────────────────────────────────────────────

// MockKeyValueStore is an in-memory repository.KeyValueStore.
type MockKeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string

	GetCallCount    int32
	SetCallCount    int32
	RemoveCallCount int32

	GetError    error
	SetError    error
	RemoveError error
}

// NewMockKeyValueStore creates a new mock key-value store.
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{values: make(map[string]string)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return "", false, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockKeyValueStore) Remove(ctx context.Context, key string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	if m.RemoveError != nil {
		return m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Raw returns the stored value for test assertions.
func (m *MockKeyValueStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// SetRaw writes a value directly, bypassing counters.
func (m *MockKeyValueStore) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]redis.WorkerLocation

	UpdateCallCount int32
	UpdateError     error
	GetError        error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]redis.WorkerLocation)}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, workerID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[workerID] = redis.WorkerLocation{WorkerID: workerID, Lat: lat, Lng: lng, LastSeen: time.Now()}
	return nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, workerID string) (redis.WorkerLocation, bool, error) {
	if m.GetError != nil {
		return redis.WorkerLocation{}, false, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[workerID]
	return loc, ok, nil
}

func (m *MockLocationStore) FindNearbyWorkers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.WorkerLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	center := domain.Coordinate{Latitude: lat, Longitude: lng}
	var result []redis.WorkerLocation
	for _, loc := range m.locations {
		if geo.WithinRadius(domain.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}, center, radiusKm) {
			result = append(result, loc)
		}
	}
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, workerID)
	return nil
}

// Location returns a stored location for test assertions.
func (m *MockLocationStore) Location(workerID string) (redis.WorkerLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[workerID]
	return loc, ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32
	AcquireError     error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireWorkerLock(ctx context.Context, workerID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[workerID] {
		return false, nil
	}
	m.locks[workerID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseWorkerLock(ctx context.Context, workerID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, workerID)
	return nil
}

// Hold marks a worker lock as taken by someone else.
func (m *MockLockStore) Hold(workerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[workerID] = true
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs fn directly against Docs. Err, when set, is returned
// instead of calling fn.
type MockTransactor struct {
	Docs *MockDocumentStore
	Err  error

	CallCount int32
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(store repository.DocumentStore) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Err != nil {
		return m.Err
	}
	return fn(m.Docs)
}

// ──────────────────────────────────────────────
// MOCK DIRECTIONS PROVIDER
// ──────────────────────────────────────────────

// MockProvider is a directions.Provider returning a fixed route.
type MockProvider struct {
	mu     sync.Mutex
	Points []domain.Coordinate
	Error  error

	CallCount  int32
	LastOrigin domain.Coordinate
}

func (m *MockProvider) GetRoute(ctx context.Context, origin, destination domain.Coordinate) (*directions.Result, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastOrigin = origin
	if m.Error != nil {
		return nil, m.Error
	}
	return &directions.Result{
		EncodedPolyline: geo.EncodePolyline(m.Points),
		DistanceText:    "4.0 km",
		DurationText:    "6 mins",
		DistanceMeters:  3969,
		DurationSeconds: 360,
	}, nil
}

// Origin returns the origin of the last request.
func (m *MockProvider) Origin() domain.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastOrigin
}

// ──────────────────────────────────────────────
// FAKE CLOCK
// ──────────────────────────────────────────────

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock stopped at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Ensure mocks implement interfaces.
var (
	_ repository.DocumentStore     = (*MockDocumentStore)(nil)
	_ repository.KeyValueStore     = (*MockKeyValueStore)(nil)
	_ redis.LocationStoreInterface = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ directions.Provider          = (*MockProvider)(nil)
)
