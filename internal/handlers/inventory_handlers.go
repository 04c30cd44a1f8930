package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/freshtrack-app/freshtrack-golang/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- User Inventory Handlers ---
//

type AddInventoryItemInput struct {
	Name       string `json:"name" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	ExpiryDate string `json:"expiryDate" binding:"required"` // RFC3339
	Notes      string `json:"notes"`
	IsScanned  bool   `json:"isScannedProduct"`
}

// AddInventoryItem is the handler for POST /v1/inventory
// It resolves (or auto-creates) the catalog product, inserts the item, and
// for scanned products records an info notification with a live push
// carrying the nutrition facts.
func (h *Handlers) AddInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)

	// 1. --- Bind & Validate JSON ---
	var input AddInventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.createInventoryItem(c, userID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "New Product added to user inventory successfully",
		"itemId":     item.ID,
		"productId":  item.ProductID,
		"name":       item.ProductName,
		"quantity":   item.Quantity,
		"expiryDate": item.ExpiryDate.Format(time.RFC3339),
	})
}

// createInventoryItem does the work shared by the single and bulk add
// endpoints.
func (h *Handlers) createInventoryItem(c *gin.Context, userID string, input AddInventoryItemInput) (*models.InventoryItem, error) {
	// 1. --- Parse the Expiry ---
	expiry, err := time.Parse(time.RFC3339, input.ExpiryDate)
	if err != nil {
		return nil, errors.New("expiryDate must be an RFC3339 timestamp")
	}
	expiry = expiry.UTC()

	// 2. --- Resolve or Auto-Create the Product ---
	product, err := h.lookupProductByName(input.Name)
	if errors.Is(err, sql.ErrNoRows) {
		product, err = h.createProduct(c, input.Name, "Uncategorized")
	}
	if err != nil {
		return nil, errors.New("failed to resolve product")
	}

	// 3. --- Insert the Item ---
	now := time.Now().UTC()
	item := &models.InventoryItem{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   product.ID,
		Quantity:    input.Quantity,
		ExpiryDate:  expiry,
		Status:      models.ItemStatusActive,
		Notes:       input.Notes,
		AddedAt:     now,
		UpdatedAt:   now,
		ProductName: product.Name,
	}

	_, err = h.DB.Exec(`
		INSERT INTO inventory_items
		(id, user_id, product_id, quantity, expiry_date, status, notes, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.ProductID, item.Quantity, item.ExpiryDate,
		item.Status, item.Notes, item.AddedAt, item.UpdatedAt)
	if err != nil {
		return nil, errors.New("failed to insert inventory item")
	}

	// 4. --- Scanned Products Get a Notification ---
	if input.IsScanned {
		h.notifyProductScanned(c, item, product)
	}

	return item, nil
}

// notifyProductScanned records the scan notification and pushes a
// Product_Scanned frame with the nutrition facts attached. Best effort on
// both counts: the item is already saved.
func (h *Handlers) notifyProductScanned(c *gin.Context, item *models.InventoryItem, product *models.Product) {
	payload := gin.H{
		"type":    "Product_Scanned",
		"message": "Product Scanned successfully",
		"data": gin.H{
			"name":       product.Name,
			"quantity":   item.Quantity,
			"notes":      item.Notes,
			"expiryDate": item.ExpiryDate.Format(time.RFC3339),
			"nutrition":  h.nutritionForProduct(product.NutritionID),
		},
	}

	_, err := h.Notifier.Notify(c.Request.Context(), notify.Event{
		UserID:      item.UserID,
		ProductName: product.Name,
		Message:     "Product Scanned successfully",
		Type:        models.NotificationInfo,
		Payload:     payload,
	})
	if err != nil {
		log.Printf("failed to record scan notification for user %s: %v", item.UserID, err)
	}
}

// GetInventoryItems is the handler for GET /v1/inventory
// Items are returned newest first with product and nutrition data joined
// in.
func (h *Handlers) GetInventoryItems(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)

	query := `
		SELECT i.id, i.user_id, i.product_id, i.quantity, i.expiry_date,
		       i.status, i.notes, i.added_at, i.updated_at,
		       COALESCE(p.name, ''), COALESCE(p.category, ''), p.nutrition_id
		FROM inventory_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.user_id = ?
		ORDER BY i.added_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	items := []*models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		var nutritionID *string
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.ExpiryDate,
			&item.Status, &item.Notes, &item.AddedAt, &item.UpdatedAt,
			&item.ProductName, &item.Category, &nutritionID,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inventory row"})
			return
		}
		item.Nutrition = h.nutritionForProduct(nutritionID)
		items = append(items, &item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating inventory rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type UpdateInventoryItemInput struct {
	Quantity   *int    `json:"quantity"`
	ExpiryDate *string `json:"expiryDate"`
	Notes      *string `json:"notes"`
}

// UpdateInventoryItem is the handler for PUT /v1/inventory/:id
func (h *Handlers) UpdateInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)
	itemID := c.Param("id")

	var input UpdateInventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Load the current row, scoped to the owner.
	var item models.InventoryItem
	err := h.DB.QueryRow(`
		SELECT id, quantity, expiry_date, notes
		FROM inventory_items WHERE id = ? AND user_id = ?`,
		itemID, userID).Scan(&item.ID, &item.Quantity, &item.ExpiryDate, &item.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in your inventory"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Notes != nil {
		item.Notes = *input.Notes
	}
	if input.ExpiryDate != nil {
		expiry, err := time.Parse(time.RFC3339, *input.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiryDate must be an RFC3339 timestamp"})
			return
		}
		item.ExpiryDate = expiry.UTC()
	}

	// A user pushing the expiry date forward does not resurrect an expired
	// item; only quantity/notes/expiry change here, never status.
	_, err = h.DB.Exec(`
		UPDATE inventory_items
		SET quantity = ?, expiry_date = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		item.Quantity, item.ExpiryDate, item.Notes, time.Now().UTC(), itemID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item updated successfully"})
}

// DeleteInventoryItem is the handler for DELETE /v1/inventory/:id
func (h *Handlers) DeleteInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)
	itemID := c.Param("id")

	result, err := h.DB.Exec(
		"DELETE FROM inventory_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in your inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from user inventory successfully"})
}

type BulkAddInput struct {
	Products []AddInventoryItemInput `json:"products" binding:"required,min=1"`
}

type bulkFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// BulkAddInventoryItems is the handler for POST /v1/inventory/bulk
// Items are processed independently; one bad entry never aborts the rest.
func (h *Handlers) BulkAddInventoryItems(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)

	var input BulkAddInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	succeeded := []gin.H{}
	failed := []bulkFailure{}
	for _, entry := range input.Products {
		if entry.Name == "" || entry.Quantity <= 0 || entry.ExpiryDate == "" {
			failed = append(failed, bulkFailure{Name: entry.Name, Reason: "Missing required fields"})
			continue
		}

		item, err := h.createInventoryItem(c, userID, entry)
		if err != nil {
			failed = append(failed, bulkFailure{Name: entry.Name, Reason: err.Error()})
			continue
		}
		succeeded = append(succeeded, gin.H{
			"itemId":   item.ID,
			"name":     item.ProductName,
			"quantity": item.Quantity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": succeeded,
		"failed":  failed,
	})
}
