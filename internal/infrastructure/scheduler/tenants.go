package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants background jobs should visit
type TenantProvider interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TenantTask is job work scoped to one tenant
type TenantTask func(ctx context.Context, tenantID uuid.UUID) error

// ForEachTenant turns a per-tenant task into a job over every active tenant.
// A failing tenant does not stop the others; all failures are returned joined.
func ForEachTenant(tenants TenantProvider, base *zap.Logger, task TenantTask) JobFunc {
	return func(ctx context.Context) error {
		ids, err := tenants.FindActiveIDs(ctx)
		if err != nil {
			return fmt.Errorf("list active tenants: %w", err)
		}

		var errs []error
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			tenantCtx, log := logger.WithTenantID(ctx, base, id.String())
			if err := task(tenantCtx, id); err != nil {
				log.Warn("Tenant task failed", zap.Error(err))
				errs = append(errs, fmt.Errorf("tenant %s: %w", id, err))
			}
		}
		return errors.Join(errs...)
	}
}
