// ===============================
// internal/handlers/schedule.go
// ===============================

package handlers

import (
	"net/http"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	service *services.ScheduleService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	userID := c.GetString("userID")

	schedule, err := h.service.CreateSchedule(c.Request.Context(), scope, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	scope := middleware.GetScope(c)
	schedule, err := h.service.GetSchedule(c.Request.Context(), scope, c.Param("scheduleId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	params := models.ScheduleListParams{
		Page:       bindPage(c),
		ChannelID:  c.Query("channelId"),
		PlaylistID: c.Query("playlistId"),
		Recurrence: c.Query("recurrence"),
		Status:     c.Query("status"),
	}

	scope := middleware.GetScope(c)
	schedules, meta, err := h.service.ListSchedules(c.Request.Context(), scope, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(schedules, meta))
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	var req models.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scope := middleware.GetScope(c)
	schedule, err := h.service.UpdateSchedule(c.Request.Context(), scope, c.Param("scheduleId"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	scope := middleware.GetScope(c)
	if err := h.service.DeleteSchedule(c.Request.Context(), scope, c.Param("scheduleId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// Calendar expands matching schedules into concrete occurrences for the
// dashboard timeline view.
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
		return
	}

	scope := middleware.GetScope(c)
	entries, err := h.service.Calendar(c.Request.Context(), scope, startDate, endDate, c.Query("channelId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
