// Package tenant provides multi-tenant scoping for GORM.
//
// Repositories scope every query explicitly with Scope. The optional callback
// guard in callback.go adds the same condition to any query against a
// tenant-owned table that forgot it, using the tenant id the HTTP middleware
// stored in the request context.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant column every tenant-owned table carries
const Column = "tenant_id"

// ErrInvalidTenantID is returned when the context tenant id is not a uuid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Scope restricts a query to one tenant
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(eq(tenantID))
	}
}

func eq(value any) clause.Eq {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: Column}, Value: value}
}
