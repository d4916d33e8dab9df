package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"accounts/cmd/security/code"
	"accounts/cmd/security/credential"
)

var errStoreDown = errors.New("store down")

// faultyStore wraps MemoryStore and fails selected calls.
type faultyStore struct {
	*MemoryStore

	failFind   bool
	failInsert bool
	failUpdate bool
	failSet    bool

	// insertConflict simulates a row inserted between validation and insert.
	insertConflict bool

	mu        sync.Mutex
	findCalls int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: NewMemoryStore()}
}

func (f *faultyStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	f.mu.Lock()
	f.findCalls++
	f.mu.Unlock()
	if f.failFind {
		return Account{}, errStoreDown
	}
	return f.MemoryStore.FindByEmail(ctx, email)
}

func (f *faultyStore) Insert(ctx context.Context, in NewAccountInput) (Account, error) {
	if f.failInsert {
		return Account{}, errStoreDown
	}
	if f.insertConflict {
		return Account{}, ConflictError{Op: "test.Insert", Field: "email"}
	}
	return f.MemoryStore.Insert(ctx, in)
}

func (f *faultyStore) UpdateActivationFields(ctx context.Context, email, c string, exp time.Time) error {
	if f.failUpdate {
		return errStoreDown
	}
	return f.MemoryStore.UpdateActivationFields(ctx, email, c, exp)
}

func (f *faultyStore) SetActivated(ctx context.Context, email string, at time.Time) error {
	if f.failSet {
		return errStoreDown
	}
	return f.MemoryStore.SetActivated(ctx, email, at)
}

func (f *faultyStore) finds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustNewService(t *testing.T, store Store, clock *testClock, gen code.Generator) *Service {
	t.Helper()

	svc, err := NewService(store, credential.SHA256Codec{},
		WithClock(clock.Now),
		WithCodeGenerator(gen),
		WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// recordingDeliverer captures delivered codes.
type recordingDeliverer struct {
	mu    sync.Mutex
	sent  map[string]string
	err   error
	onRun func()
}

func (r *recordingDeliverer) deliver(_ context.Context, email, c string) error {
	if r.onRun != nil {
		r.onRun()
	}
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = map[string]string{}
	}
	r.sent[email] = c
	return nil
}
