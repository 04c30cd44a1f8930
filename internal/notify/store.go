package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
)

// SQLInventoryStore implements InventoryStore over the inventory_items
// table.
type SQLInventoryStore struct {
	DB *sql.DB
}

func (s *SQLInventoryStore) FindExpired(ctx context.Context, now time.Time) ([]*ExpiredItem, error) {
	// LEFT JOIN: an item whose catalog product was deleted still has to be
	// expired, it just loses its notification.
	query := `
		SELECT i.id, i.user_id, COALESCE(p.name, ''), i.expiry_date
		FROM inventory_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.status = 'active' AND i.expiry_date < ?`

	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired items: %w", err)
	}
	defer rows.Close()

	var items []*ExpiredItem
	for rows.Next() {
		var item ExpiredItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductName, &item.ExpiryDate); err != nil {
			return nil, fmt.Errorf("failed to scan expired item row: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (s *SQLInventoryStore) MarkExpired(ctx context.Context, itemID string, now time.Time) error {
	// The status guard makes the transition one-way: a row some other
	// writer already expired is left alone.
	query := `
		UPDATE inventory_items
		SET status = 'expired', updated_at = ?
		WHERE id = ? AND status = 'active'`

	if _, err := s.DB.ExecContext(ctx, query, now, itemID); err != nil {
		return fmt.Errorf("failed to mark item expired: %w", err)
	}
	return nil
}

// SQLNotificationLog implements NotificationLog over the notifications
// table.
type SQLNotificationLog struct {
	DB *sql.DB
}

func (s *SQLNotificationLog) Insert(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications
		(id, user_id, product_name, message, type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`

	_, err := s.DB.ExecContext(ctx, query,
		n.ID, n.UserID, n.ProductName, n.Message, n.Type, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *SQLNotificationLog) MarkRead(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// MySQL reports zero changed rows both for a missing id and for a
		// row that was already read. Only the former is an error.
		var exists bool
		err := s.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ?)", id).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}
