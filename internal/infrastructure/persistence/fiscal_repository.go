package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements fiscal.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByReference finds an invoice by its gateway reference across tenants
func (r *GormInvoiceRepository) FindByReference(ctx context.Context, reference string) (*fiscal.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).First(&model, "reference = ?", reference).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists invoices matching the filter
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fiscal.Invoice, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.InvoiceModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, InvoiceSortFields, "created_at")

	var rows []models.InvoiceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInvoices(rows), nil
}

// CountForTenant counts invoices matching the filter
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.InvoiceModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByStatus returns up to limit invoices in status, oldest first
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status fiscal.Status, limit int) ([]fiscal.Invoice, error) {
	query := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("status = ?", status).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.InvoiceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInvoices(rows), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *fiscal.Invoice) error {
	return saveAggregate(conn(ctx, r.db), models.InvoiceModelFromDomain(inv), &inv.BaseAggregateRoot)
}

// DeleteForTenant deletes an invoice within a tenant
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.InvoiceModel{}, "id = ?", id))
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		op, pattern := likeOp(query), searchPattern(filter.Search)
		query = query.Where("(number "+op+" ? OR reference "+op+" ?)", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "booking_id":
			query = query.Where("booking_id = ?", value)
		}
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}

func toInvoices(rows []models.InvoiceModel) []fiscal.Invoice {
	out := make([]fiscal.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ fiscal.InvoiceRepository = (*GormInvoiceRepository)(nil)
