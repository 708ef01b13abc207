// ===============================
// internal/handlers/playlist.go
// ===============================

package handlers

import (
	"net/http"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type PlaylistHandler struct {
	service *services.PlaylistService
}

func NewPlaylistHandler(service *services.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var req models.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	userID := c.GetString("userID")

	playlist, err := h.service.CreatePlaylist(c.Request.Context(), scope, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	scope := middleware.GetScope(c)
	playlist, err := h.service.GetPlaylist(c.Request.Context(), scope, c.Param("playlistId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h *PlaylistHandler) ListPlaylists(c *gin.Context) {
	params := models.PlaylistListParams{
		Page:   bindPage(c),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	scope := middleware.GetScope(c)
	playlists, meta, err := h.service.ListPlaylists(c.Request.Context(), scope, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(playlists, meta))
}

func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	var req models.UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	playlist, err := h.service.UpdatePlaylist(c.Request.Context(), scope, c.Param("playlistId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	scope := middleware.GetScope(c)
	if err := h.service.DeletePlaylist(c.Request.Context(), scope, c.Param("playlistId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Playlist deleted successfully"})
}

// ===============================
// PLAYLIST ITEMS
// ===============================

func (h *PlaylistHandler) AddItem(c *gin.Context) {
	var req models.AddPlaylistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	item, err := h.service.AddItem(c.Request.Context(), scope, c.Param("playlistId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PlaylistHandler) BulkAddItems(c *gin.Context) {
	var req struct {
		Items []models.AddPlaylistItemRequest `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	items, err := h.service.BulkAddItems(c.Request.Context(), scope, c.Param("playlistId"), req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": items})
}

func (h *PlaylistHandler) UpdateItem(c *gin.Context) {
	var req models.UpdatePlaylistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	item, err := h.service.UpdateItem(c.Request.Context(), scope, c.Param("playlistId"), c.Param("itemId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PlaylistHandler) DeleteItem(c *gin.Context) {
	scope := middleware.GetScope(c)
	if err := h.service.DeleteItem(c.Request.Context(), scope, c.Param("playlistId"), c.Param("itemId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed successfully"})
}

func (h *PlaylistHandler) ReorderItems(c *gin.Context) {
	var req models.ReorderPlaylistItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	items, err := h.service.ReorderItems(c.Request.Context(), scope, c.Param("playlistId"), req.ItemIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
