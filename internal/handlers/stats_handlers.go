package handlers

import (
	"database/sql"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Waste Statistics Handlers ---
//
// These feed the dashboard charts: how much food expires, in which
// categories, and what's in it nutritionally.
//

type ExpiredTrendItem struct {
	Date         string `json:"date"`
	ExpiredCount int    `json:"expired_count"`
}

// GetExpiredTrend is the handler for GET /v1/stats/expired-products
// Count of expired items grouped by expiry date.
func (h *Handlers) GetExpiredTrend(c *gin.Context) {
	query := `
		SELECT DATE(expiry_date) AS day, COUNT(*)
		FROM inventory_items
		WHERE status = 'expired'
		GROUP BY DATE(expiry_date)
		ORDER BY day`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	trend := []ExpiredTrendItem{}
	for rows.Next() {
		var item ExpiredTrendItem
		if err := rows.Scan(&item.Date, &item.ExpiredCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan trend row"})
			return
		}
		trend = append(trend, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating trend rows"})
		return
	}

	c.JSON(http.StatusOK, trend)
}

type ExpiryTrendItem struct {
	Date     string `json:"date"`
	Expiring int    `json:"expiring"`
	Expired  int    `json:"expired"`
	Active   int    `json:"active"`
}

// GetExpiryTrends is the handler for GET /v1/stats/expiry-trends
// Per expiry day: how many items hit that date and how many of them
// actually expired versus being consumed in time.
func (h *Handlers) GetExpiryTrends(c *gin.Context) {
	query := `
		SELECT DATE(expiry_date) AS day,
		       COUNT(*),
		       SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END)
		FROM inventory_items
		GROUP BY DATE(expiry_date)
		ORDER BY day`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	trend := []ExpiryTrendItem{}
	for rows.Next() {
		var item ExpiryTrendItem
		if err := rows.Scan(&item.Date, &item.Expiring, &item.Expired); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan trend row"})
			return
		}
		item.Active = item.Expiring - item.Expired
		trend = append(trend, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating trend rows"})
		return
	}

	c.JSON(http.StatusOK, trend)
}

type WastageCategoryItem struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

// GetWastageByCategory is the handler for GET /v1/stats/wastage-category
// Percentage of wasted (expired) items broken down by product category.
func (h *Handlers) GetWastageByCategory(c *gin.Context) {
	var totalExpired int
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM inventory_items WHERE status = 'expired'").Scan(&totalExpired)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if totalExpired == 0 {
		c.JSON(http.StatusOK, []WastageCategoryItem{})
		return
	}

	query := `
		SELECT p.category, COUNT(*)
		FROM inventory_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.status = 'expired'
		GROUP BY p.category`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	breakdown := []WastageCategoryItem{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category row"})
			return
		}
		percentage := float64(count) / float64(totalExpired) * 100
		breakdown = append(breakdown, WastageCategoryItem{
			Category:   category,
			Percentage: math.Round(percentage*100) / 100,
		})
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating category rows"})
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// GetWastedVsActive is the handler for GET /v1/stats/wasted-vs-eaten
func (h *Handlers) GetWastedVsActive(c *gin.Context) {
	var expired, active int
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM inventory_items WHERE status = 'expired'").Scan(&expired)
	if err == nil {
		err = h.DB.QueryRow(
			"SELECT COUNT(*) FROM inventory_items WHERE status = 'active'").Scan(&active)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, []gin.H{
		{"status": "wasted", "count": expired},
		{"status": "active", "count": active},
	})
}

// GetNutrients is the handler for GET /v1/stats/nutrients/:productId
// Nutrient map for the radar chart; fields without data ("N/A") are
// dropped rather than rendered as zero.
func (h *Handlers) GetNutrients(c *gin.Context) {
	productID := c.Param("productId")

	var name string
	var protein, carbohydrate, fat, fiber, calories string
	query := `
		SELECT p.name, n.protein, n.carbohydrate, n.fat, n.fiber, n.calories
		FROM products p
		JOIN nutritions n ON n.id = p.nutrition_id
		WHERE p.id = ?`
	err := h.DB.QueryRow(query, productID).Scan(
		&name, &protein, &carbohydrate, &fat, &fiber, &calories)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{
			"item":      "Product not found or no nutrition data",
			"nutrients": gin.H{},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	nutrients := gin.H{}
	for key, value := range map[string]string{
		"protein":      protein,
		"carbohydrate": carbohydrate,
		"fat":          fat,
		"fiber":        fiber,
		"calories":     calories,
	} {
		if value != "" && value != "N/A" {
			nutrients[key] = value
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"item":      name,
		"nutrients": nutrients,
	})
}
