// ===============================
// internal/handlers/content.go - Active content resolution endpoint
// ===============================

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"signagebe/internal/middleware"
	"signagebe/internal/models"
	"signagebe/internal/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	resolver     *services.ResolverService
	cacheSeconds int
}

func NewContentHandler(resolver *services.ResolverService, cacheSeconds int) *ContentHandler {
	return &ContentHandler{resolver: resolver, cacheSeconds: cacheSeconds}
}

// Resolve answers what the display should play right now. channelId is
// optional (absent means the platform default slot); at lets dashboards
// preview resolution for another instant.
func (h *ContentHandler) Resolve(c *gin.Context) {
	target := models.ChannelTargetFromParam(c.Query("channelId"))

	asOf := time.Now()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at must be RFC 3339"})
			return
		}
		asOf = parsed
	}

	scope := middleware.GetScope(c)
	result, err := h.resolver.ResolveActiveContent(c.Request.Context(), scope, target, asOf)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.cacheSeconds > 0 {
		c.Header("Cache-Control", fmt.Sprintf("max-age=%d", h.cacheSeconds))
	}
	c.JSON(http.StatusOK, result)
}
