// ===============================
// internal/handlers/respond.go - Shared response helpers
// ===============================

package handlers

import (
	"errors"
	"log"
	"net/http"

	"signagebe/internal/models"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP responses. Validation problems
// carry field detail; anything unrecognized becomes an opaque 500.
func writeError(c *gin.Context, err error) {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    nf.Resource + " not found",
			"resource": nf.Resource,
		})
		return
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}

	var ce *models.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{"error": ce.Message})
		return
	}

	var de *models.DependencyError
	if errors.As(err, &de) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      de.Error(),
			"resource":   de.Resource,
			"referredBy": de.ReferredBy,
		})
		return
	}

	log.Printf("❌ Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// listResponse is the pagination envelope for all listing endpoints.
func listResponse(data interface{}, meta models.PageMeta) gin.H {
	return gin.H{"data": data, "meta": meta}
}

// bindPage fills the common list parameters from the query string.
func bindPage(c *gin.Context) models.Page {
	var page models.Page
	_ = c.ShouldBindQuery(&page)
	page.Normalize()
	return page
}
