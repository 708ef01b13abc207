// ===============================
// internal/handlers/quickaction.go - Override quick actions
// ===============================

package handlers

import (
	"net/http"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type QuickActionHandler struct {
	service *services.OverrideService
}

func NewQuickActionHandler(service *services.OverrideService) *QuickActionHandler {
	return &QuickActionHandler{service: service}
}

// Execute starts an override, superseding whatever was live on the slot.
func (h *QuickActionHandler) Execute(c *gin.Context) {
	var req models.ExecuteQuickActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	userID := c.GetString("userID")

	override, err := h.service.Execute(c.Request.Context(), scope, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, override)
}

// Stop ends an override. Idempotent: stopping an already-ended override
// returns its final state.
func (h *QuickActionHandler) Stop(c *gin.Context) {
	scope := middleware.GetScope(c)
	override, err := h.service.Stop(c.Request.Context(), scope, c.Param("overrideId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, override)
}

func (h *QuickActionHandler) GetOverride(c *gin.Context) {
	scope := middleware.GetScope(c)
	override, err := h.service.GetOverride(c.Request.Context(), scope, c.Param("overrideId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, override)
}

func (h *QuickActionHandler) ListOverrides(c *gin.Context) {
	params := models.OverrideListParams{
		Page:      bindPage(c),
		ChannelID: c.Query("channelId"),
		Status:    c.Query("status"),
	}

	scope := middleware.GetScope(c)
	overrides, meta, err := h.service.ListOverrides(c.Request.Context(), scope, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(overrides, meta))
}
