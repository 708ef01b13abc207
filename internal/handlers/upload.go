// ===============================
// internal/handlers/upload.go - Media file uploads
// ===============================

package handlers

import (
	"net/http"

	"signagebe/internal/middleware"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

// 200MB upload ceiling; larger files should use the presigned flow.
const maxUploadSize = 200 << 20

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadFile accepts a multipart file and stores it under the tenant's
// prefix, returning the public URL for use as a media sourceUrl.
func (h *UploadHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	scope := middleware.GetScope(c)
	url, err := h.service.UploadFile(c.Request.Context(), scope, file, fileHeader.Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"url":      url,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	})
}

// PresignedUpload hands out a short-lived direct-to-storage PUT URL.
func (h *UploadHandler) PresignedUpload(c *gin.Context) {
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	presigned, err := h.service.PresignedUpload(scope, req.Filename, req.ContentType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, presigned)
}
