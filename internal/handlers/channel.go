// ===============================
// internal/handlers/channel.go
// ===============================

package handlers

import (
	"net/http"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	service *services.ChannelService
}

func NewChannelHandler(service *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	userID := c.GetString("userID")

	channel, err := h.service.CreateChannel(c.Request.Context(), scope, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) GetChannel(c *gin.Context) {
	scope := middleware.GetScope(c)
	channel, err := h.service.GetChannel(c.Request.Context(), scope, c.Param("channelId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) ListChannels(c *gin.Context) {
	params := models.ChannelListParams{
		Page:   bindPage(c),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	scope := middleware.GetScope(c)
	channels, meta, err := h.service.ListChannels(c.Request.Context(), scope, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(channels, meta))
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	var req models.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	channel, err := h.service.UpdateChannel(c.Request.Context(), scope, c.Param("channelId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	scope := middleware.GetScope(c)
	if err := h.service.DeleteChannel(c.Request.Context(), scope, c.Param("channelId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted successfully"})
}
