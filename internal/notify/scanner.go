package notify

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
)

// ExpiredItem is the scanner's view of an inventory row past its expiry
// date: just enough to transition it and notify its owner.
type ExpiredItem struct {
	ID          string
	UserID      string
	ProductName string
	ExpiryDate  time.Time
}

// InventoryStore is the slice of the inventory table the scanner needs.
type InventoryStore interface {
	// FindExpired returns items with status 'active' whose expiry date is
	// before now, with the product name already resolved.
	FindExpired(ctx context.Context, now time.Time) ([]*ExpiredItem, error)

	// MarkExpired transitions one item active -> expired and bumps its
	// updated_at.
	MarkExpired(ctx context.Context, itemID string, now time.Time) error
}

// Scanner is the recurring task that expires overdue inventory items and
// fires a warning notification per item. One logical run at a time: a tick
// arriving while a run is still going is skipped, not queued.
type Scanner struct {
	Store    InventoryStore
	Notifier *Notifier
	Interval time.Duration

	// Now is the scanner's clock; tests pin it. Defaults to UTC wall time.
	Now func() time.Time

	running atomic.Bool
}

func NewScanner(store InventoryStore, notifier *Notifier, interval time.Duration) *Scanner {
	return &Scanner{
		Store:    store,
		Notifier: notifier,
		Interval: interval,
	}
}

// Start runs the scan loop until ctx is cancelled. Errors inside a run are
// logged and never stop the ticker.
func (s *Scanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Printf("🕒 Expiry scanner started (every %v)", s.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry scanner stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single scan. Exposed so tests (and admin tooling) can
// trigger a deterministic tick instead of waiting on the wall clock.
func (s *Scanner) RunOnce(ctx context.Context) {
	// Single-flight: if the previous run is still going, skip this tick.
	if !s.running.CompareAndSwap(false, true) {
		log.Println("expiry scan still in progress, skipping tick")
		return
	}
	defer s.running.Store(false)

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	items, err := s.Store.FindExpired(ctx, now)
	if err != nil {
		log.Printf("expiry scan query failed: %v", err)
		return
	}

	for _, item := range items {
		// The status transition must land regardless of what happens to
		// the notification, and one bad item must not stall the batch.
		if err := s.Store.MarkExpired(ctx, item.ID, now); err != nil {
			log.Printf("failed to expire item %s: %v", item.ID, err)
			continue
		}

		if item.ProductName == "" {
			// Product row gone (deleted from the catalog). The item is
			// expired either way; there is nothing useful to notify about.
			log.Printf("expired item %s has no product name, skipping notification", item.ID)
			continue
		}

		_, err := s.Notifier.Notify(ctx, Event{
			UserID:      item.UserID,
			ProductName: item.ProductName,
			Message:     fmt.Sprintf("Product %s has expired", item.ProductName),
			Type:        models.NotificationWarning,
			ExpiryDate:  item.ExpiryDate,
			Timestamp:   now,
		})
		if err != nil {
			log.Printf("failed to notify user %s about item %s: %v", item.UserID, item.ID, err)
		}
	}
}
