package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotificationLog is an in-memory NotificationLog.
type mockNotificationLog struct {
	mu        sync.Mutex
	inserted  []*models.Notification
	readIDs   map[string]bool
	insertErr error
}

func newMockNotificationLog() *mockNotificationLog {
	return &mockNotificationLog{readIDs: make(map[string]bool)}
}

func (m *mockNotificationLog) Insert(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	copied := *n
	m.inserted = append(m.inserted, &copied)
	return nil
}

func (m *mockNotificationLog) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, n := range m.inserted {
		if n.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	m.readIDs[id] = true
	return nil
}

func (m *mockNotificationLog) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

func TestNotify_PersistsAndPushes(t *testing.T) {
	logStore := newMockNotificationLog()
	registry := NewRegistry()
	notifier := NewNotifier(logStore, registry)

	ch := make(chan []byte, 1)
	registry.Register("u1", ch)

	expiry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	eventTime := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	n, err := notifier.Notify(context.Background(), Event{
		UserID:      "u1",
		ProductName: "milk",
		Message:     "Product milk has expired",
		Type:        models.NotificationWarning,
		ExpiryDate:  expiry,
		Timestamp:   eventTime,
	})
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, 1, logStore.count())
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, models.NotificationWarning, n.Type)
	assert.False(t, n.IsRead)

	var push PushMessage
	require.NoError(t, json.Unmarshal(<-ch, &push))
	assert.Equal(t, n.ID, push.ID)
	assert.Equal(t, "warning", push.Type)
	assert.Equal(t, "milk", push.ProductName)
	assert.Equal(t, "2024-01-01T00:00:00Z", push.ExpiryDate)
	assert.Equal(t, "2024-01-02T00:00:00Z", push.Timestamp)
}

func TestNotify_NoConnectionStillPersists(t *testing.T) {
	logStore := newMockNotificationLog()
	notifier := NewNotifier(logStore, NewRegistry())

	n, err := notifier.Notify(context.Background(), Event{
		UserID:      "offline-user",
		ProductName: "bread",
		Message:     "Product bread has expired",
		Type:        models.NotificationWarning,
	})

	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 1, logStore.count())
}

func TestNotify_InsertFailureSkipsPush(t *testing.T) {
	logStore := newMockNotificationLog()
	logStore.insertErr = errors.New("disk full")
	registry := NewRegistry()
	notifier := NewNotifier(logStore, registry)

	ch := make(chan []byte, 1)
	registry.Register("u1", ch)

	_, err := notifier.Notify(context.Background(), Event{
		UserID:  "u1",
		Message: "whatever",
		Type:    models.NotificationError,
	})

	require.Error(t, err)
	assert.Empty(t, ch, "failed persistence must not push anything")
}

func TestNotify_CustomPayload(t *testing.T) {
	logStore := newMockNotificationLog()
	registry := NewRegistry()
	notifier := NewNotifier(logStore, registry)

	ch := make(chan []byte, 1)
	registry.Register("u1", ch)

	_, err := notifier.Notify(context.Background(), Event{
		UserID:      "u1",
		ProductName: "banana",
		Message:     "Product Scanned successfully",
		Type:        models.NotificationInfo,
		Payload:     map[string]string{"type": "Product_Scanned"},
	})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-ch, &got))
	assert.Equal(t, "Product_Scanned", got["type"])
}
