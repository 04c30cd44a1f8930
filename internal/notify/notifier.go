package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced notification does not exist.
var ErrNotFound = errors.New("notification not found")

// NotificationLog is the durable store of notification rows. The SQL
// implementation lives in store.go; tests substitute an in-memory one.
type NotificationLog interface {
	Insert(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id string) error
}

// Event describes one notification to record and (best effort) push.
type Event struct {
	UserID      string
	ProductName string
	Message     string
	Type        string // info | warning | error

	// ExpiryDate of the item the event is about; zero when not applicable.
	ExpiryDate time.Time

	// Timestamp of the event. Zero means "now". The expiry scanner pins
	// this to its scan time so every push from one run carries the same
	// timestamp.
	Timestamp time.Time

	// Payload, when set, replaces the default push body. Used by the scan
	// flow, whose live push carries nutrition data the durable row does
	// not.
	Payload interface{}
}

// PushMessage is the default live-push body for a notification.
type PushMessage struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	ProductName string `json:"productName"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Notifier records notification events and pushes them to live sessions.
//
// The contract is at-least-once durable record, at-most-once live push: the
// row is written first and is the source of truth; delivery is attempted
// once and its failure is logged and swallowed. A disconnected client
// catches up from the log, it never gets a replayed push.
type Notifier struct {
	Log      NotificationLog
	Registry *Registry
}

func NewNotifier(logStore NotificationLog, registry *Registry) *Notifier {
	return &Notifier{Log: logStore, Registry: registry}
}

// Notify persists a notification row, then attempts live delivery.
// An insert failure fails the call and nothing is pushed. A delivery
// failure does not: the row already exists, which is the guarantee.
func (n *Notifier) Notify(ctx context.Context, ev Event) (*models.Notification, error) {
	eventTime := ev.Timestamp
	if eventTime.IsZero() {
		eventTime = time.Now().UTC()
	}

	// 1. --- Durable record first ---
	notification := &models.Notification{
		ID:          uuid.NewString(),
		UserID:      ev.UserID,
		ProductName: ev.ProductName,
		Message:     ev.Message,
		Type:        ev.Type,
		IsRead:      false,
		CreatedAt:   eventTime,
	}
	if err := n.Log.Insert(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	// 2. --- Best-effort live push ---
	body := ev.Payload
	if body == nil {
		push := PushMessage{
			ID:          notification.ID,
			Type:        notification.Type,
			Message:     notification.Message,
			ProductName: notification.ProductName,
			Timestamp:   eventTime.Format(time.RFC3339),
		}
		if !ev.ExpiryDate.IsZero() {
			push.ExpiryDate = ev.ExpiryDate.Format(time.RFC3339)
		}
		body = push
	}

	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("failed to encode push for user %s: %v", ev.UserID, err)
		return notification, nil
	}

	if delivered := n.Registry.Deliver(ev.UserID, payload); !delivered {
		log.Printf("no live session for user %s, notification %s stored only", ev.UserID, notification.ID)
	}

	return notification, nil
}
