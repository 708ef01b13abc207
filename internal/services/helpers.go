// ===============================
// internal/services/helpers.go - Shared query building
// ===============================

package services

import (
	"fmt"

	"signagebe/internal/models"

	"github.com/google/uuid"
)

// validID reports whether s parses as a UUID. Entity id columns are UUID
// typed; rejecting malformed ids up front keeps them from surfacing as
// Postgres cast errors instead of not-found.
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// scopeWhere builds the tenant predicate every signage query starts from.
// Platform scope pins organization_id to NULL so platform and organization
// rows never mix. Returns the clause, its args and the next free index.
func scopeWhere(scope models.TenantScope, argIdx int) (string, []interface{}, int) {
	clause := fmt.Sprintf("service_key = $%d", argIdx)
	args := []interface{}{scope.ServiceKey}
	argIdx++

	if scope.OrganizationID == nil {
		clause += " AND organization_id IS NULL"
	} else {
		clause += fmt.Sprintf(" AND organization_id = $%d", argIdx)
		args = append(args, *scope.OrganizationID)
		argIdx++
	}
	return clause, args, argIdx
}

// scopeWhereAliased is scopeWhere with columns qualified by a table alias,
// for queries that join.
func scopeWhereAliased(scope models.TenantScope, alias string, argIdx int) (string, []interface{}, int) {
	clause := fmt.Sprintf("%s.service_key = $%d", alias, argIdx)
	args := []interface{}{scope.ServiceKey}
	argIdx++

	if scope.OrganizationID == nil {
		clause += fmt.Sprintf(" AND %s.organization_id IS NULL", alias)
	} else {
		clause += fmt.Sprintf(" AND %s.organization_id = $%d", alias, argIdx)
		args = append(args, *scope.OrganizationID)
		argIdx++
	}
	return clause, args, argIdx
}
