package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/report"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportReadModel runs the report aggregates directly against the tables
type GormReportReadModel struct {
	db *gorm.DB
}

// NewGormReportReadModel creates a new GormReportReadModel
func NewGormReportReadModel(db *gorm.DB) *GormReportReadModel {
	return &GormReportReadModel{db: db}
}

// BookingsByStatus counts bookings per status
func (r *GormReportReadModel) BookingsByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// CountStartingBetween counts confirmed or pending bookings starting in [from, to)
func (r *GormReportReadModel) CountStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Where("start_date >= ? AND start_date < ? AND status IN ?", from, to,
			[]booking.Status{booking.StatusPending, booking.StatusConfirmed}).
		Count(&count).Error
	return count, err
}

// CountEndingBetween counts bookings out with customers that end in [from, to)
func (r *GormReportReadModel) CountEndingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Where("end_date >= ? AND end_date < ? AND status IN ?", from, to,
			[]booking.Status{booking.StatusConfirmed, booking.StatusInProgress}).
		Count(&count).Error
	return count, err
}

// PaidTotals sums paid income and expense with paid_at in [from, to)
func (r *GormReportReadModel) PaidTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var rows []struct {
		Type  finance.TransactionType
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", finance.TransactionStatusPaid, from, to).
		Group("type").
		Scan(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	income, expense := decimal.Zero, decimal.Zero
	for _, row := range rows {
		if row.Type == finance.TransactionTypeIncome {
			income = row.Total
		} else {
			expense = row.Total
		}
	}
	return income, expense, nil
}

// OverdueReceivables counts and sums OVERDUE income
func (r *GormReportReadModel) OverdueReceivables(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("type = ? AND status = ?", finance.TransactionTypeIncome, finance.TransactionStatusOverdue).
		Scan(&row).Error; err != nil {
		return 0, decimal.Zero, err
	}
	return row.Count, row.Total, nil
}

// TopEquipment ranks equipment by rented units over non-cancelled bookings starting in [from, to)
func (r *GormReportReadModel) TopEquipment(ctx context.Context, tenantID uuid.UUID, from, to time.Time, limit int) ([]report.EquipmentRank, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []report.EquipmentRank
	if err := conn(ctx, r.db).Table("booking_items AS i").
		Select("i.equipment_id, i.equipment_name AS name, SUM(i.quantity) AS quantity, COUNT(DISTINCT i.booking_id) AS bookings").
		Joins("JOIN bookings b ON b.id = i.booking_id").
		Where("b.tenant_id = ? AND b.status <> ? AND b.start_date >= ? AND b.start_date < ?",
			tenantID, booking.StatusCancelled, from, to).
		Group("i.equipment_id, i.equipment_name").
		Order("quantity DESC, name ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []report.EquipmentRank{}
	}
	return rows, nil
}

// DailyBookings returns one entry per day of [from, to) with the count and revenue
// of non-cancelled bookings starting that day. Days are grouped in Go so the
// query stays portable between PostgreSQL and SQLite
func (r *GormReportReadModel) DailyBookings(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.DailyBookings, error) {
	var rows []struct {
		StartDate   time.Time
		TotalAmount decimal.Decimal
	}
	if err := conn(ctx, r.db).Model(&models.BookingModel{}).Scopes(tenant.Scope(tenantID)).
		Select("start_date, total_amount").
		Where("status <> ? AND start_date >= ? AND start_date < ?", booking.StatusCancelled, from, to).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	loc := from.Location()
	index := make(map[string]int)
	var days []report.DailyBookings
	for day := finance.StartOfDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		index[day.Format(time.DateOnly)] = len(days)
		days = append(days, report.DailyBookings{Day: day, Revenue: decimal.Zero})
	}
	for _, row := range rows {
		i, ok := index[row.StartDate.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		days[i].Count++
		days[i].Revenue = days[i].Revenue.Add(row.TotalAmount)
	}
	if days == nil {
		days = []report.DailyBookings{}
	}
	return days, nil
}

var _ report.ReadModel = (*GormReportReadModel)(nil)
