package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openBookingStatuses = []booking.Status{booking.StatusPending, booking.StatusConfirmed, booking.StatusInProgress}

// GormBookingRepository implements booking.Repository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("equipment_name ASC")
	})
}

// FindByIDForTenant finds a booking with its items
func (r *GormBookingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*booking.Booking, error) {
	var model models.BookingModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID), preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists bookings with their items
func (r *GormBookingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]booking.Booking, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, BookingSortFields, "start_date").Scopes(preloadItems)

	var bookingModels []models.BookingModel
	if err := query.Find(&bookingModels).Error; err != nil {
		return nil, err
	}
	bookings := make([]booking.Booking, len(bookingModels))
	for i := range bookingModels {
		bookings[i] = *bookingModels[i].ToDomain()
	}
	return bookings, nil
}

// CountForTenant counts bookings matching the filter
func (r *GormBookingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextSequence increments and returns the tenant's booking counter.
// The upsert holds a row lock until the surrounding transaction ends
func (r *GormBookingRepository) NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var next int64
	err := conn(ctx, r.db).Raw(`INSERT INTO booking_sequences (tenant_id, last_value) VALUES (?, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = booking_sequences.last_value + 1
		RETURNING last_value`, tenantID).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// HasOpenForCustomer reports whether the customer has PENDING, CONFIRMED or IN_PROGRESS bookings
func (r *GormBookingRepository) HasOpenForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ? AND status IN ?", customerID, openBookingStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasOpenForEquipment reports whether an open booking lists the equipment
func (r *GormBookingRepository) HasOpenForEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.BookingItemModel{}).
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("booking_items.tenant_id = ? AND booking_items.equipment_id = ? AND bookings.status IN ?",
			tenantID, equipmentID, openBookingStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCreatedSince counts bookings created at or after since
func (r *GormBookingRepository) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a booking and replaces its items
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	return r.save(ctx, b, saveAggregate)
}

// SaveWithLock is Save guarded by the optimistic-lock version
func (r *GormBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	return r.save(ctx, b, saveWithLock)
}

func (r *GormBookingRepository) save(ctx context.Context, b *booking.Booking,
	write func(*gorm.DB, any, *shared.BaseAggregateRoot) error) error {
	model := models.BookingModelFromDomain(b)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := write(tx.Omit(clause.Associations), model, &b.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.BookingItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// DeleteForTenant deletes a booking and its items
func (r *GormBookingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(tenant.Scope(tenantID)).
			Delete(&models.BookingItemModel{}, "booking_id = ?", id).Error; err != nil {
			return err
		}
		return deleteResult(tx.Scopes(tenant.Scope(tenantID)).Delete(&models.BookingModel{}, "id = ?", id))
	})
}

func (r *GormBookingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("number "+likeOp(query)+" ?", searchPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "equipment_id":
			query = query.Where("id IN (?)", r.db.Model(&models.BookingItemModel{}).
				Select("booking_id").Where("equipment_id = ?", value))
		}
	}
	if filter.From != nil {
		query = query.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_date < ?", *filter.To)
	}
	return query
}

var _ booking.Repository = (*GormBookingRepository)(nil)
