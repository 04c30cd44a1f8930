package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInventoryStore is an in-memory InventoryStore.
type mockInventoryStore struct {
	mu          sync.Mutex
	items       []*ExpiredItem
	expired     map[string]time.Time
	findErr     error
	markErrFor  string
	findCalls   int
	findStarted chan struct{}
	findRelease chan struct{}
}

func newMockInventoryStore(items ...*ExpiredItem) *mockInventoryStore {
	return &mockInventoryStore{
		items:   items,
		expired: make(map[string]time.Time),
	}
}

func (m *mockInventoryStore) FindExpired(ctx context.Context, now time.Time) ([]*ExpiredItem, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()

	if m.findStarted != nil {
		m.findStarted <- struct{}{}
		<-m.findRelease
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.items, nil
}

func (m *mockInventoryStore) MarkExpired(ctx context.Context, itemID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if itemID == m.markErrFor {
		return errors.New("write failed")
	}
	m.expired[itemID] = now
	return nil
}

func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunOnce_ExpiresItemAndNotifies(t *testing.T) {
	scanTime := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	item := &ExpiredItem{
		ID:          "item-a",
		UserID:      "u1",
		ProductName: "milk",
		ExpiryDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	store := newMockInventoryStore(item)
	logStore := newMockNotificationLog()
	registry := NewRegistry()
	scanner := NewScanner(store, NewNotifier(logStore, registry), time.Second)
	scanner.Now = fixedTime(scanTime)

	ch := make(chan []byte, 4)
	registry.Register("u1", ch)

	scanner.RunOnce(context.Background())

	// Status transition committed with the scan time.
	require.Contains(t, store.expired, "item-a")
	assert.Equal(t, scanTime, store.expired["item-a"])

	// Exactly one warning notification persisted.
	require.Equal(t, 1, logStore.count())
	assert.Equal(t, "u1", logStore.inserted[0].UserID)
	assert.Equal(t, "warning", logStore.inserted[0].Type)
	assert.Equal(t, "Product milk has expired", logStore.inserted[0].Message)

	// Live push carries the product name and the scan timestamp.
	var push PushMessage
	require.NoError(t, json.Unmarshal(<-ch, &push))
	assert.Equal(t, "milk", push.ProductName)
	assert.Equal(t, "2024-01-02T00:00:00Z", push.Timestamp)
	assert.Equal(t, "2024-01-01T00:00:00Z", push.ExpiryDate)
}

func TestRunOnce_NoConnectionStillTransitionsAndPersists(t *testing.T) {
	item := &ExpiredItem{ID: "item-a", UserID: "u1", ProductName: "milk", ExpiryDate: time.Now().UTC()}
	store := newMockInventoryStore(item)
	logStore := newMockNotificationLog()
	scanner := NewScanner(store, NewNotifier(logStore, NewRegistry()), time.Second)

	scanner.RunOnce(context.Background())

	assert.Contains(t, store.expired, "item-a")
	assert.Equal(t, 1, logStore.count())
}

func TestRunOnce_OneBadItemDoesNotAbortBatch(t *testing.T) {
	store := newMockInventoryStore(
		&ExpiredItem{ID: "item-a", UserID: "u1", ProductName: "milk"},
		&ExpiredItem{ID: "item-b", UserID: "u1", ProductName: "eggs"},
		&ExpiredItem{ID: "item-c", UserID: "u2", ProductName: "ham"},
	)
	store.markErrFor = "item-b"
	logStore := newMockNotificationLog()
	scanner := NewScanner(store, NewNotifier(logStore, NewRegistry()), time.Second)

	scanner.RunOnce(context.Background())

	assert.Contains(t, store.expired, "item-a")
	assert.NotContains(t, store.expired, "item-b")
	assert.Contains(t, store.expired, "item-c")

	// item-b failed its transition, so it gets no notification either.
	assert.Equal(t, 2, logStore.count())
}

func TestRunOnce_PersistFailureDoesNotBlockTransition(t *testing.T) {
	store := newMockInventoryStore(
		&ExpiredItem{ID: "item-a", UserID: "u1", ProductName: "milk"},
	)
	logStore := newMockNotificationLog()
	logStore.insertErr = errors.New("db down")
	scanner := NewScanner(store, NewNotifier(logStore, NewRegistry()), time.Second)

	scanner.RunOnce(context.Background())

	// The status commit must land even when the notification write fails.
	assert.Contains(t, store.expired, "item-a")
	assert.Equal(t, 0, logStore.count())
}

func TestRunOnce_MissingProductNameSkipsNotification(t *testing.T) {
	store := newMockInventoryStore(
		&ExpiredItem{ID: "item-a", UserID: "u1", ProductName: ""},
	)
	logStore := newMockNotificationLog()
	scanner := NewScanner(store, NewNotifier(logStore, NewRegistry()), time.Second)

	scanner.RunOnce(context.Background())

	assert.Contains(t, store.expired, "item-a")
	assert.Equal(t, 0, logStore.count())
}

func TestRunOnce_QueryFailureIsSwallowed(t *testing.T) {
	store := newMockInventoryStore()
	store.findErr = errors.New("connection refused")
	scanner := NewScanner(store, NewNotifier(newMockNotificationLog(), NewRegistry()), time.Second)

	// Must not panic; the next tick gets another chance.
	scanner.RunOnce(context.Background())
}

func TestRunOnce_SingleFlight(t *testing.T) {
	store := newMockInventoryStore()
	store.findStarted = make(chan struct{}, 1)
	store.findRelease = make(chan struct{})
	scanner := NewScanner(store, NewNotifier(newMockNotificationLog(), NewRegistry()), time.Second)

	go scanner.RunOnce(context.Background())
	<-store.findStarted

	// Second tick while the first is mid-query must be skipped.
	scanner.RunOnce(context.Background())
	close(store.findRelease)

	// Give the first run a moment to finish.
	time.Sleep(50 * time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.findCalls)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	store := newMockInventoryStore()
	scanner := NewScanner(store, NewNotifier(newMockNotificationLog(), NewRegistry()), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})
	go func() {
		scanner.Start(ctx)
		close(doneCh)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop after context cancellation")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.GreaterOrEqual(t, store.findCalls, 1)
}
