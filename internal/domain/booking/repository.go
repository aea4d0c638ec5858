package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// Repository persists bookings with their items
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Booking, error)
	// FindAllForTenant honours filter.Search (number), the "status" and
	// "customer_id" filter keys and the From/To window on start_date
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Booking, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// NextSequence returns the next per-tenant booking sequence
	NextSequence(ctx context.Context, tenantID uuid.UUID) (int64, error)
	HasOpenForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
	HasOpenForEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) (bool, error)
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
	Save(ctx context.Context, booking *Booking) error
	SaveWithLock(ctx context.Context, booking *Booking) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
