// ===============================
// internal/handlers/media.go
// ===============================

package handlers

import (
	"net/http"
	"strings"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	service *services.MediaService
}

func NewMediaHandler(service *services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) CreateMedia(c *gin.Context) {
	var req models.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	userID := c.GetString("userID")

	media, err := h.service.CreateMedia(c.Request.Context(), scope, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

func (h *MediaHandler) GetMedia(c *gin.Context) {
	scope := middleware.GetScope(c)
	media, err := h.service.GetMedia(c.Request.Context(), scope, c.Param("mediaId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

func (h *MediaHandler) ListMedia(c *gin.Context) {
	params := models.MediaListParams{
		Page:       bindPage(c),
		MediaType:  c.Query("mediaType"),
		SourceType: c.Query("sourceType"),
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
	}
	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}

	scope := middleware.GetScope(c)
	media, meta, err := h.service.ListMedia(c.Request.Context(), scope, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(media, meta))
}

func (h *MediaHandler) GetLibrary(c *gin.Context) {
	scope := middleware.GetScope(c)
	library, err := h.service.GetLibrary(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, library)
}

func (h *MediaHandler) UpdateMedia(c *gin.Context) {
	var req models.UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	media, err := h.service.UpdateMedia(c.Request.Context(), scope, c.Param("mediaId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	scope := middleware.GetScope(c)
	if err := h.service.DeleteMedia(c.Request.Context(), scope, c.Param("mediaId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}
