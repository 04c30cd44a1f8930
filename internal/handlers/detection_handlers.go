package handlers

import (
	"io"
	"net/http"

	"github.com/freshtrack-app/freshtrack-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Image Detection Handler ---
//

// 8MB is plenty for a phone photo of a fridge shelf.
const maxImageSize = 8 << 20

// DetectImage is the handler for POST /v1/detection/detect
// It runs the uploaded photo through the vision model and returns the
// detected food items. The client then confirms which of them to add to
// the inventory.
func (h *Handlers) DetectImage(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(string)

	// 1. --- Read the Upload ---
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required (multipart field 'file')"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 8MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(imageData)
	}

	// 2. --- Run the Model ---
	detections, err := h.AIService.DetectFoodItems(c.Request.Context(), imageData, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Detection failed"})
		return
	}

	// 3. --- Log the Scan ---
	// Detections carry no barcode; the scan log row records the attempt
	// and whether anything was recognized.
	status := models.ScanStatusScanned
	if len(detections) == 0 {
		status = models.ScanStatusNotFound
	}
	h.addScanLog(userID, "image-detection", nil, len(detections), status)

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"detections": detections,
	})
}
