package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/report"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topEquipmentLimit  = 5
	maxReportDays      = 366
	lowAvailabilityCap = 2
	dashboardTTL       = time.Minute
)

var ErrInvalidPeriod = shared.NewDomainError("INVALID_PERIOD", "The end of the period must not precede its start")

// EquipmentStats is the inventory side of the dashboard
type EquipmentStats interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[inventory.EquipmentStatus]int64, error)
	SumStock(ctx context.Context, tenantID uuid.UUID) (inventory.StockLevels, error)
	FindLowAvailability(ctx context.Context, tenantID uuid.UUID, threshold int) ([]inventory.Equipment, error)
}

// Service builds the tenant dashboard and booking reports. Days are cut in loc
type Service struct {
	reads     report.ReadModel
	equipment EquipmentStats
	cache     cache.LookupCache
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new report service. A nil cache disables dashboard caching
func NewService(reads report.ReadModel, equipment EquipmentStats, c cache.LookupCache, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		reads:     reads,
		equipment: equipment,
		cache:     c,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard returns the overview of today and the current month
func (s *Service) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	if s.cache == nil {
		return s.buildDashboard(ctx, tenantID)
	}
	key := fmt.Sprintf("dashboard:%s:%s", tenantID, s.now().In(s.loc).Format("2006-01-02T15:04"))
	return cache.Remember(ctx, s.cache, s.logger, key, dashboardTTL, func(ctx context.Context) (*report.Dashboard, error) {
		return s.buildDashboard(ctx, tenantID)
	})
}

func (s *Service) buildDashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	d := &report.Dashboard{
		EquipmentByStatus: map[string]int64{},
		PeriodStart:       monthStart,
		PeriodEnd:         monthEnd,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.equipment.CountByStatus(ctx, tenantID)
		for status, n := range counts {
			d.EquipmentByStatus[string(status)] = n
		}
		return err
	})
	g.Go(func() (err error) {
		d.Stock, err = s.equipment.SumStock(ctx, tenantID)
		return err
	})
	g.Go(func() error {
		low, err := s.equipment.FindLowAvailability(ctx, tenantID, lowAvailabilityCap)
		d.LowAvailability = len(low)
		return err
	})
	g.Go(func() (err error) {
		d.BookingsByStatus, err = s.reads.BookingsByStatus(ctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		d.StartingToday, err = s.reads.CountStartingBetween(ctx, tenantID, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		d.EndingToday, err = s.reads.CountEndingBetween(ctx, tenantID, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		d.MonthRevenue, d.MonthExpenses, err = s.reads.PaidTotals(ctx, tenantID, monthStart, monthEnd)
		return err
	})
	g.Go(func() (err error) {
		d.OverdueReceivables, d.OverdueAmount, err = s.reads.OverdueReceivables(ctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		d.TopEquipment, err = s.reads.TopEquipment(ctx, tenantID, monthStart, monthEnd, topEquipmentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.BookingsByStatus == nil {
		d.BookingsByStatus = map[string]int64{}
	}
	if d.TopEquipment == nil {
		d.TopEquipment = []report.EquipmentRank{}
	}
	return d, nil
}

// BookingsReport returns one row per day from from to to, inclusive.
// Zero bounds default to the last 30 days
func (s *Service) BookingsReport(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*report.BookingsReport, error) {
	now := s.now().In(s.loc)
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -29)
	}
	from = s.day(from)
	to = s.day(to)
	if to.Before(from) {
		return nil, ErrInvalidPeriod
	}
	if to.Sub(from) > maxReportDays*24*time.Hour {
		return nil, shared.NewDomainErrorf("INVALID_PERIOD", "Reports cover at most %d days", maxReportDays)
	}

	rows, err := s.reads.DailyBookings(ctx, tenantID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]report.DailyBookings, len(rows))
	for _, r := range rows {
		byDay[s.day(r.Day).Format(time.DateOnly)] = r
	}

	out := &report.BookingsReport{From: from, To: to, TotalRevenue: decimal.Zero}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		row, ok := byDay[day.Format(time.DateOnly)]
		if !ok {
			row = report.DailyBookings{Revenue: decimal.Zero}
		}
		row.Day = day
		out.Days = append(out.Days, row)
		out.TotalCount += row.Count
		out.TotalRevenue = out.TotalRevenue.Add(row.Revenue)
	}
	return out, nil
}

func (s *Service) day(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}
