package handlers

import (
	"errors"
	"net/http"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/freshtrack-app/freshtrack-golang/internal/notify"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /v1/notifications
// It retrieves all notifications for the logged-in user, unread and newest
// first. This list is how a client that missed live pushes catches up.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)

	// 2. --- Query Database ---
	query := `
		SELECT id, user_id, product_name, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT 50` // Limit to 50 to avoid performance issues

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows into Slice ---
	notifications := []*models.Notification{}
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.UserID,
			&notif.ProductName,
			&notif.Message,
			&notif.Type,
			&notif.IsRead,
			&notif.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification row"})
			return
		}
		notifications = append(notifications, &notif)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating notification rows"})
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
	})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
// Marking an already-read notification again is a harmless no-op.
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)
	notificationID := c.Param("id")

	// 2. --- Check Ownership ---
	// Scoped to the logged-in user so nobody can mark another user's
	// notifications as read.
	var exists bool
	err := h.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ? AND user_id = ?)",
		notificationID, userID).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	// 3. --- Mark Read ---
	logStore := notify.SQLNotificationLog{DB: h.DB}
	if err := logStore.MarkRead(c.Request.Context(), notificationID); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// NotificationsWS is the handler for GET /v1/notifications/ws
// It hands the connection over to the live session protocol. Token auth
// happens inside ServeWS (the token rides a query parameter, because
// browsers cannot set headers on websocket dials).
func (h *Handlers) NotificationsWS(c *gin.Context) {
	notify.ServeWS(h.Registry, &notify.SQLNotificationLog{DB: h.DB}, c.Writer, c.Request)
}
