package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByDocument(ctx context.Context, tenantID uuid.UUID, document string) (*Customer, error)
	// FindAllForTenant honours filter.Search (name, trade name, document, email)
	// and the "type" and "active" filter keys
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByDocument(ctx context.Context, tenantID uuid.UUID, document string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// LeadRepository persists platform leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	// FindAll honours filter.Search and the "status" filter key
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}
