package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements audit.Repository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends an entry
func (r *GormActivityLogRepository) Create(ctx context.Context, log *audit.ActivityLog) error {
	return conn(ctx, r.db).Create(models.ActivityLogModelFromDomain(log)).Error
}

// FindAllForTenant lists entries newest first and returns the unpaged total
func (r *GormActivityLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]audit.ActivityLog, int64, error) {
	query := conn(ctx, r.db).Model(&models.ActivityLogModel{}).Scopes(tenant.Scope(tenantID))
	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "entity_id":
			query = query.Where("entity_id = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "action":
			query = query.Where("action = ?", value)
		}
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

	var rows []models.ActivityLogModel
	if err := applyPage(query, filter, ActivityLogSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]audit.ActivityLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, total, nil
}

var _ audit.Repository = (*GormActivityLogRepository)(nil)
