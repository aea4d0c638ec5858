package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByDocument finds a customer by CPF/CNPJ digits within a tenant
func (r *GormCustomerRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, document string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "document = ?", document).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists customers matching the filter
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, CustomerSortFields, "name")

	var customerModels []models.CustomerModel
	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// CountForTenant counts customers matching the filter
func (r *GormCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByDocument checks if another customer of the tenant holds the document
func (r *GormCustomerRepository) ExistsByDocument(ctx context.Context, tenantID uuid.UUID, document string, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.CustomerModel{}).Scopes(tenant.Scope(tenantID)).
		Where("document = ?", document)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	return saveAggregate(conn(ctx, r.db), models.CustomerModelFromDomain(c), &c.BaseAggregateRoot)
}

// DeleteForTenant deletes a customer within a tenant
func (r *GormCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.CustomerModel{}, "id = ?", id))
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		op, pattern := likeOp(query), searchPattern(filter.Search)
		query = query.Where("(name "+op+" ? OR trade_name "+op+" ? OR document "+op+" ? OR email "+op+" ?)",
			pattern, pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		}
	}
	return query
}

// GormLeadRepository implements partner.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Lead, error) {
	var model models.LeadModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists leads matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Lead, error) {
	query := applyPage(r.applyFilter(conn(ctx, r.db).Model(&models.LeadModel{}), filter), filter, LeadSortFields, "created_at")

	var leadModels []models.LeadModel
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}
	leads := make([]partner.Lead, len(leadModels))
	for i := range leadModels {
		leads[i] = *leadModels[i].ToDomain()
	}
	return leads, nil
}

// Count counts leads matching the filter
func (r *GormLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.LeadModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, l *partner.Lead) error {
	return conn(ctx, r.db).Save(models.LeadModelFromDomain(l)).Error
}

// Delete deletes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Delete(&models.LeadModel{}, "id = ?", id))
}

func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		op, pattern := likeOp(query), searchPattern(filter.Search)
		query = query.Where("(name "+op+" ? OR email "+op+" ? OR company "+op+" ?)", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var (
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
	_ partner.LeadRepository     = (*GormLeadRepository)(nil)
)
