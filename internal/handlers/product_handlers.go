package handlers

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Warehouse Product Handlers ---
//
// The warehouse is the shared product catalog: one row per distinct food
// name, carrying the barcode and the nutrition reference. User inventories
// point into it.
//

// GenerateProductBarcode derives a stable barcode from a product name.
// Same name always yields the same barcode, which is what lets a scanned
// code resolve back to the catalog row.
func GenerateProductBarcode(productName string) string {
	normalized := strings.ToLower(strings.TrimSpace(productName))
	hash := sha256.Sum256([]byte(normalized))
	hashPart := hex.EncodeToString(hash[:])[:8]

	prefix := normalized
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%s-20", prefix, hashPart)
}

type AddProductInput struct {
	ProductName string `json:"productName" binding:"required,min=3"`
	Category    string `json:"category"`
}

// AddProduct is the handler for POST /v1/products
// It looks up nutrition facts for the food, stores them, and creates the
// catalog row with a generated barcode.
func (h *Handlers) AddProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input AddProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Category == "" {
		input.Category = "Uncategorized"
	}

	// 2. --- Reject Duplicates ---
	var exists bool
	err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM products WHERE name = ?)", input.ProductName).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Product already exists in the warehouse"})
		return
	}

	// 3. --- Create the Product ---
	product, err := h.createProduct(c, input.ProductName, input.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product added successfully",
		"productId": product.ID,
		"name":      product.Name,
		"barcode":   product.Barcode,
	})
}

// createProduct inserts a nutrition row (best effort) and the product row.
// Shared by AddProduct and the inventory auto-create path.
func (h *Handlers) createProduct(c *gin.Context, name, category string) (*models.Product, error) {
	product := &models.Product{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
		Barcode:  GenerateProductBarcode(name),
		AddedAt:  time.Now().UTC(),
	}

	// Nutrition lookup failing must not block the product: the catalog row
	// is still useful without facts.
	facts, err := h.Nutrition.Lookup(c.Request.Context(), name)
	if err != nil {
		log.Printf("nutrition lookup for %q failed: %v", name, err)
	} else {
		nutritionID := uuid.NewString()
		_, err := h.DB.Exec(`
			INSERT INTO nutritions (id, protein, carbohydrate, fat, fiber, calories, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nutritionID, facts.Protein, facts.Carbohydrate, facts.Fat,
			facts.Fiber, facts.Calories, time.Now().UTC())
		if err != nil {
			log.Printf("failed to store nutrition for %q: %v", name, err)
		} else {
			product.NutritionID = &nutritionID
		}
	}

	_, err = h.DB.Exec(`
		INSERT INTO products (id, name, category, barcode, nutrition_id, added_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Category, product.Barcode,
		product.NutritionID, product.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return product, nil
}

// GetProducts is the handler for GET /v1/products
func (h *Handlers) GetProducts(c *gin.Context) {
	query := `
		SELECT p.id, p.name, p.category, p.barcode, p.nutrition_id, p.added_at,
		       n.id, n.protein, n.carbohydrate, n.fat, n.fiber, n.calories
		FROM products p
		LEFT JOIN nutritions n ON n.id = p.nutrition_id
		ORDER BY p.added_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		var p models.Product
		var nID, protein, carbohydrate, fat, fiber, calories sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.Barcode, &p.NutritionID, &p.AddedAt,
			&nID, &protein, &carbohydrate, &fat, &fiber, &calories,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		if nID.Valid {
			p.Nutrition = &models.Nutrition{
				ID:           nID.String,
				Protein:      protein.String,
				Carbohydrate: carbohydrate.String,
				Fat:          fat.String,
				Fiber:        fiber.String,
				Calories:     calories.String,
			}
		}
		products = append(products, &p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating product rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ScanBarcode is the handler for GET /v1/products/scan/:barcode
// It resolves a scanned barcode against the catalog and writes a scan log
// row either way.
func (h *Handlers) ScanBarcode(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)
	barcode := c.Param("barcode")

	var product models.Product
	query := `SELECT id, name, category, barcode, nutrition_id, added_at FROM products WHERE barcode = ?`
	err := h.DB.QueryRow(query, barcode).Scan(
		&product.ID, &product.Name, &product.Category, &product.Barcode,
		&product.NutritionID, &product.AddedAt)

	if errors.Is(err, sql.ErrNoRows) {
		h.addScanLog(userID, barcode, nil, 0, models.ScanStatusNotFound)
		c.JSON(http.StatusNotFound, gin.H{"error": "No product matches this barcode"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	h.addScanLog(userID, barcode, &product.ID, 1, models.ScanStatusScanned)

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// addScanLog records one scan attempt. Failures are logged only: losing a
// scan log row must never fail the scan itself.
func (h *Handlers) addScanLog(userID, barcode string, productID *string, quantity int, status string) {
	_, err := h.DB.Exec(`
		INSERT INTO scan_logs (id, user_id, barcode, product_id, quantity, status, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, barcode, productID, quantity, status, time.Now().UTC())
	if err != nil {
		log.Printf("failed to record scan log for user %s: %v", userID, err)
	}
}

type UpdateProductInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// UpdateProduct is the handler for PUT /v1/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" && input.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	// Fetch current values so partial updates keep the other field.
	var current models.Product
	err := h.DB.QueryRow("SELECT name, category FROM products WHERE id = ?", productID).
		Scan(&current.Name, &current.Category)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	if input.Name == "" {
		input.Name = current.Name
	}
	if input.Category == "" {
		input.Category = current.Category
	}

	// Renaming changes the derived barcode too.
	_, err = h.DB.Exec(
		"UPDATE products SET name = ?, category = ?, barcode = ? WHERE id = ?",
		input.Name, input.Category, GenerateProductBarcode(input.Name), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct is the handler for DELETE /v1/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// lookupProductByName resolves a product by exact name, or returns
// sql.ErrNoRows.
func (h *Handlers) lookupProductByName(name string) (*models.Product, error) {
	var product models.Product
	err := h.DB.QueryRow(
		"SELECT id, name, category, barcode, nutrition_id, added_at FROM products WHERE name = ?",
		name).Scan(
		&product.ID, &product.Name, &product.Category, &product.Barcode,
		&product.NutritionID, &product.AddedAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// nutritionForProduct loads the nutrition row referenced by a product, or
// nil when the product has none.
func (h *Handlers) nutritionForProduct(nutritionID *string) *models.Nutrition {
	if nutritionID == nil {
		return nil
	}
	var n models.Nutrition
	err := h.DB.QueryRow(`
		SELECT id, protein, carbohydrate, fat, fiber, calories, added_at
		FROM nutritions WHERE id = ?`, *nutritionID).Scan(
		&n.ID, &n.Protein, &n.Carbohydrate, &n.Fat, &n.Fiber, &n.Calories, &n.AddedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("failed to load nutrition %s: %v", *nutritionID, err)
		}
		return nil
	}
	return &n
}
