package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// CategoryRepository persists transaction categories
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string, kind TransactionType) (*Category, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, kind TransactionType) ([]Category, error)
	ExistsByNameAndType(ctx context.Context, tenantID uuid.UUID, name string, kind TransactionType, excludeID *uuid.UUID) (bool, error)
	IsInUse(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	SaveBatch(ctx context.Context, categories []*Category) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// TransactionRepository persists financial transactions
type TransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	// FindAllForTenant honours filter.Search (description), the "type", "status",
	// "category_id", "customer_id" and "booking_id" keys and From/To on due_date
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	FindOpenByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]Transaction, error)
	// MarkOverdue flips PENDING rows due before day to OVERDUE and returns how many changed
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error)
	Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*Summary, error)
	Save(ctx context.Context, tx *Transaction) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// RecurringRepository persists recurring series
type RecurringRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringTransaction, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecurringTransaction, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// FindDue returns ACTIVE series with next_due_date <= now
	FindDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]RecurringTransaction, error)
	Save(ctx context.Context, rt *RecurringTransaction) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
