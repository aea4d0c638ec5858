package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/locaflow/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

type trialExpirer interface {
	ExpireTrials(ctx context.Context) (int, error)
}

type overdueMarker interface {
	MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type recurringGenerator interface {
	GenerateDue(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type invoiceSyncer interface {
	SyncProcessing(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// jobServices are the application services driven by the scheduler
type jobServices struct {
	billing      trialExpirer
	transactions overdueMarker
	recurring    recurringGenerator
	invoices     invoiceSyncer
}

// registerJobs adds the periodic jobs. A job with an empty schedule only
// runs when triggered
func registerJobs(s *scheduler.Scheduler, cfg config.SchedulerConfig, tenants scheduler.TenantProvider, log *zap.Logger, svc jobServices) error {
	jobs := []struct {
		name     string
		schedule string
		run      scheduler.JobFunc
	}{
		{
			name:     "recurring-transactions",
			schedule: cfg.RecurringSchedule,
			run: scheduler.ForEachTenant(tenants, log, func(ctx context.Context, tenantID uuid.UUID) error {
				n, err := svc.recurring.GenerateDue(ctx, tenantID)
				if n > 0 {
					log.Info("Recurring transactions generated", zap.String("tenant_id", tenantID.String()), zap.Int("count", n))
				}
				return err
			}),
		},
		{
			name:     "overdue-transactions",
			schedule: cfg.OverdueSchedule,
			run: scheduler.ForEachTenant(tenants, log, func(ctx context.Context, tenantID uuid.UUID) error {
				_, err := svc.transactions.MarkOverdue(ctx, tenantID)
				return err
			}),
		},
		{
			name:     "invoice-sync",
			schedule: cfg.InvoiceSyncSchedule,
			run: scheduler.ForEachTenant(tenants, log, func(ctx context.Context, tenantID uuid.UUID) error {
				_, err := svc.invoices.SyncProcessing(ctx, tenantID)
				return err
			}),
		},
		{
			name:     "trial-expiry",
			schedule: cfg.TrialExpirySchedule,
			run: func(ctx context.Context) error {
				n, err := svc.billing.ExpireTrials(ctx)
				if n > 0 {
					log.Info("Trials expired", zap.Int("count", n))
				}
				return err
			},
		},
	}

	for _, job := range jobs {
		if err := s.Register(job.name, job.schedule, job.run); err != nil {
			return err
		}
	}
	return nil
}
