package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormEquipmentRepository implements inventory.EquipmentRepository using GORM
type GormEquipmentRepository struct {
	db *gorm.DB
}

// NewGormEquipmentRepository creates a new GormEquipmentRepository
func NewGormEquipmentRepository(db *gorm.DB) *GormEquipmentRepository {
	return &GormEquipmentRepository{db: db}
}

// FindByIDForTenant finds equipment by ID within a tenant
func (r *GormEquipmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Equipment, error) {
	var model models.EquipmentModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant loads several equipment rows at once. Missing IDs are skipped
func (r *GormEquipmentRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.Equipment, error) {
	if len(ids) == 0 {
		return []inventory.Equipment{}, nil
	}
	var equipmentModels []models.EquipmentModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("id IN ?", ids).
		Find(&equipmentModels).Error; err != nil {
		return nil, err
	}
	return toEquipment(equipmentModels), nil
}

// FindAllForTenant lists equipment matching the filter
func (r *GormEquipmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Equipment, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.EquipmentModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, EquipmentSortFields, "name")

	var equipmentModels []models.EquipmentModel
	if err := query.Find(&equipmentModels).Error; err != nil {
		return nil, err
	}
	return toEquipment(equipmentModels), nil
}

// CountForTenant counts equipment matching the filter
func (r *GormEquipmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.EquipmentModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if the code is taken within the tenant
func (r *GormEquipmentRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.EquipmentModel{}).Scopes(tenant.Scope(tenantID)).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLowAvailability returns active equipment with available units at or below threshold
func (r *GormEquipmentRepository) FindLowAvailability(ctx context.Context, tenantID uuid.UUID, threshold int) ([]inventory.Equipment, error) {
	var equipmentModels []models.EquipmentModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("status = ? AND total_quantity > 0 AND available_quantity <= ?", inventory.EquipmentStatusActive, threshold).
		Order("available_quantity ASC, name ASC").
		Find(&equipmentModels).Error; err != nil {
		return nil, err
	}
	return toEquipment(equipmentModels), nil
}

// SumStock totals the five counters across the tenant
func (r *GormEquipmentRepository) SumStock(ctx context.Context, tenantID uuid.UUID) (inventory.StockLevels, error) {
	var sums models.StockColumns
	if err := conn(ctx, r.db).Model(&models.EquipmentModel{}).Scopes(tenant.Scope(tenantID)).
		Select(`COALESCE(SUM(total_quantity), 0) AS total_quantity,
			COALESCE(SUM(available_quantity), 0) AS available_quantity,
			COALESCE(SUM(reserved_quantity), 0) AS reserved_quantity,
			COALESCE(SUM(maintenance_quantity), 0) AS maintenance_quantity,
			COALESCE(SUM(damaged_quantity), 0) AS damaged_quantity`).
		Scan(&sums).Error; err != nil {
		return inventory.StockLevels{}, err
	}
	return sums.ToDomain(), nil
}

// CountByStatus counts equipment per status
func (r *GormEquipmentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[inventory.EquipmentStatus]int64, error) {
	var rows []struct {
		Status inventory.EquipmentStatus
		Count  int64
	}
	if err := conn(ctx, r.db).Model(&models.EquipmentModel{}).Scopes(tenant.Scope(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[inventory.EquipmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save creates or updates equipment without a version check
func (r *GormEquipmentRepository) Save(ctx context.Context, e *inventory.Equipment) error {
	return saveAggregate(conn(ctx, r.db), models.EquipmentModelFromDomain(e), &e.BaseAggregateRoot)
}

// SaveWithLock saves equipment with optimistic locking.
// Returns CONCURRENCY_CONFLICT if the row changed since it was loaded
func (r *GormEquipmentRepository) SaveWithLock(ctx context.Context, e *inventory.Equipment) error {
	return saveWithLock(conn(ctx, r.db), models.EquipmentModelFromDomain(e), &e.BaseAggregateRoot)
}

// DeleteForTenant deletes equipment within a tenant
func (r *GormEquipmentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.EquipmentModel{}, "id = ?", id))
}

func (r *GormEquipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		op, pattern := likeOp(query), searchPattern(filter.Search)
		query = query.Where("(name "+op+" ? OR code "+op+" ? OR brand "+op+" ? OR serial_number "+op+" ?)",
			pattern, pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "available":
			if value == true {
				query = query.Where("available_quantity > 0")
			}
		}
	}
	return query
}

func toEquipment(rows []models.EquipmentModel) []inventory.Equipment {
	out := make([]inventory.Equipment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a ledger row
func (r *GormStockMovementRepository) Create(ctx context.Context, m *inventory.StockMovement) error {
	return conn(ctx, r.db).Create(models.StockMovementModelFromDomain(m)).Error
}

// FindForTenant lists ledger rows newest first and returns the unpaged total
func (r *GormStockMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := conn(ctx, r.db).Model(&models.StockMovementModel{}).Scopes(tenant.Scope(tenantID))
	if filter.EquipmentID != nil {
		query = query.Where("equipment_id = ?", *filter.EquipmentID)
	}
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := max(filter.Page, 1)

	var rows []models.StockMovementModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

var (
	_ inventory.EquipmentRepository     = (*GormEquipmentRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
)
