// ===============================
// internal/middleware/auth_test.go - Admin claim gating
// ===============================

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

func runAdminOnly(t *testing.T, token interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/signage/retail-screens/media/abc", nil)
	if token != nil {
		c.Set("firebaseToken", token)
	}
	AdminOnly()(c)
	return c, w
}

func TestAdminOnlyRejectsUnauthenticated(t *testing.T) {
	_, w := runAdminOnly(t, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", w.Code)
	}
}

func TestAdminOnlyRejectsMissingClaim(t *testing.T) {
	_, w := runAdminOnly(t, &auth.Token{UID: "editor-1", Claims: map[string]interface{}{}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", w.Code)
	}
}

func TestAdminOnlyRejectsFalseClaim(t *testing.T) {
	_, w := runAdminOnly(t, &auth.Token{UID: "editor-2", Claims: map[string]interface{}{"admin": false}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", w.Code)
	}
}

func TestAdminOnlyAllowsAdminClaim(t *testing.T) {
	c, _ := runAdminOnly(t, &auth.Token{UID: "admin-1", Claims: map[string]interface{}{"admin": true}})
	if c.IsAborted() {
		t.Fatalf("admin token must pass through")
	}
}
