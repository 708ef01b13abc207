// ===============================
// internal/middleware/scope.go - Tenant scope extraction
// ===============================

package middleware

import (
	"net/http"

	"signagebe/internal/models"

	"github.com/gin-gonic/gin"
)

const scopeContextKey = "tenantScope"

// RequireScope builds the tenant scope every signage route runs under.
// The service key comes from the URL path; the organization id, when the
// caller acts for one, from the X-Organization-ID header or organizationId
// query param. Requests without a service key are rejected before any data
// access.
func RequireScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceKey := c.Param("serviceKey")
		if serviceKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "service key is required"})
			c.Abort()
			return
		}

		scope := models.TenantScope{ServiceKey: serviceKey}

		orgID := c.GetHeader("X-Organization-ID")
		if orgID == "" {
			orgID = c.Query("organizationId")
		}
		if orgID != "" {
			scope.OrganizationID = &orgID
		}

		c.Set(scopeContextKey, scope)
		c.Next()
	}
}

// GetScope returns the scope set by RequireScope. The zero value only
// appears if a route skipped the middleware, which is a wiring bug.
func GetScope(c *gin.Context) models.TenantScope {
	if value, exists := c.Get(scopeContextKey); exists {
		if scope, ok := value.(models.TenantScope); ok {
			return scope
		}
	}
	return models.TenantScope{}
}
