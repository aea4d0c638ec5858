package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// EquipmentRank is one row of the most rented equipment list
type EquipmentRank struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Name        string    `json:"name"`
	Quantity    int64     `json:"quantity"`
	Bookings    int64     `json:"bookings"`
}

// DailyBookings is the count and revenue of bookings starting on one day
type DailyBookings struct {
	Day     time.Time       `json:"day"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Dashboard is the tenant overview
type Dashboard struct {
	EquipmentByStatus  map[string]int64      `json:"equipment_by_status"`
	Stock              inventory.StockLevels `json:"stock"`
	LowAvailability    int                   `json:"low_availability"`
	BookingsByStatus   map[string]int64      `json:"bookings_by_status"`
	StartingToday      int64                 `json:"starting_today"`
	EndingToday        int64                 `json:"ending_today"`
	MonthRevenue       decimal.Decimal       `json:"month_revenue"`
	MonthExpenses      decimal.Decimal       `json:"month_expenses"`
	OverdueReceivables int64                 `json:"overdue_receivables"`
	OverdueAmount      decimal.Decimal       `json:"overdue_amount"`
	TopEquipment       []EquipmentRank       `json:"top_equipment"`
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
}

// BookingsReport is the per-day view of a window
type BookingsReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Days         []DailyBookings `json:"days"`
	TotalCount   int64           `json:"total_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// ReadModel runs the aggregate queries behind reports
type ReadModel interface {
	BookingsByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)
	CountStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
	CountEndingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
	PaidTotals(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (income, expense decimal.Decimal, err error)
	OverdueReceivables(ctx context.Context, tenantID uuid.UUID) (count int64, amount decimal.Decimal, err error)
	TopEquipment(ctx context.Context, tenantID uuid.UUID, from, to time.Time, limit int) ([]EquipmentRank, error)
	DailyBookings(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]DailyBookings, error)
}
