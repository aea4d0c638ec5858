package fiscal

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByReference(ctx context.Context, reference string) (*Invoice, error)
	// FindAllForTenant honours filter.Search (number, reference), the "status",
	// "customer_id" and "booking_id" keys and From/To on created_at
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, limit int) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
