package tenant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	queryCallback  = "tenant:before_query"
	rowCallback    = "tenant:before_row"
	updateCallback = "tenant:before_update"
	deleteCallback = "tenant:before_delete"
)

// EnableAutoTenantFilter registers callbacks that add tenant_id = <context tenant>
// to queries, updates and deletes on tenant-owned tables. Tables without the
// column (plans, leads, tenants) and contexts without a tenant are left alone,
// so platform jobs keep working
func EnableAutoTenantFilter(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register(queryCallback, addTenantFilter)
	_ = db.Callback().Row().Before("gorm:row").Register(rowCallback, addTenantFilter)
	_ = db.Callback().Update().Before("gorm:update").Register(updateCallback, addTenantFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register(deleteCallback, addTenantFilter)
}

// DisableAutoTenantFilter removes the callbacks, used by tests
func DisableAutoTenantFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove(queryCallback)
	_ = db.Callback().Row().Remove(rowCallback)
	_ = db.Callback().Update().Remove(updateCallback)
	_ = db.Callback().Delete().Remove(deleteCallback)
}

func addTenantFilter(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped || stmt.Schema == nil {
		return
	}
	if stmt.Schema.LookUpField(Column) == nil {
		return
	}
	raw := logger.GetTenantID(stmt.Context)
	if raw == "" {
		return
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}
	if hasTenantCondition(stmt) {
		return
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{eq(tenantID)}})
}

func hasTenantCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if exprContainsTenant(expr) {
			return true
		}
	}
	return false
}

func exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		return columnIsTenant(e.Column)
	case clause.IN:
		return columnIsTenant(e.Column)
	case clause.Expr:
		return strings.Contains(e.SQL, Column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, Column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprContainsTenant(cond) {
				return true
			}
		}
	}
	return false
}

func columnIsTenant(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == Column
	case string:
		return c == Column || strings.HasSuffix(c, "."+Column)
	}
	return false
}
