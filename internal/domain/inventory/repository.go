package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// EquipmentRepository persists equipment
type EquipmentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Equipment, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Equipment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Equipment, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// FindLowAvailability returns active equipment with available units at or below threshold
	FindLowAvailability(ctx context.Context, tenantID uuid.UUID, threshold int) ([]Equipment, error)
	SumStock(ctx context.Context, tenantID uuid.UUID) (StockLevels, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[EquipmentStatus]int64, error)
	Save(ctx context.Context, equipment *Equipment) error
	// SaveWithLock saves only when the stored version matches the loaded one
	SaveWithLock(ctx context.Context, equipment *Equipment) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockMovementRepository persists the append-only ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)
}
