package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/booking"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/inventory"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestEquipment(t *testing.T, tenantID uuid.UUID, code string, units int) *inventory.Equipment {
	t.Helper()
	e, err := inventory.NewEquipment(tenantID, code,
		inventory.EquipmentDetails{Name: "Betoneira " + code, Category: "Construção"},
		inventory.Pricing{Daily: decimal.NewFromInt(50)})
	require.NoError(t, err)
	if units > 0 {
		_, err = e.Move(inventory.MovementPurchase, units, inventory.MovementRef{Reason: "initial"})
		require.NoError(t, err)
	}
	return e
}

func newTestBooking(t *testing.T, tenantID, customerID uuid.UUID, e *inventory.Equipment, qty int, start time.Time) *booking.Booking {
	t.Helper()
	item, err := booking.NewItem(e.ID, e.Name, qty, 3, decimal.NewFromInt(150))
	require.NoError(t, err)
	b, err := booking.NewBooking(tenantID, booking.FormatNumber(1), booking.Terms{
		CustomerID: customerID,
		StartDate:  start,
		EndDate:    start.Add(72 * time.Hour),
	}, []booking.Item{item})
	require.NoError(t, err)
	return b
}

func TestGormTransactionManager_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	repo := NewGormEquipmentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		e := newTestEquipment(t, tenantID, "BET-01", 2)
		err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
			return repo.Save(ctx, e)
		})
		require.NoError(t, err)

		_, err = repo.FindByIDForTenant(ctx, tenantID, e.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		e := newTestEquipment(t, tenantID, "BET-02", 2)
		err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := repo.Save(ctx, e); err != nil {
				return err
			}
			return shared.ErrInsufficientStock
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		_, err = repo.FindByIDForTenant(ctx, tenantID, e.ID)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		e := newTestEquipment(t, tenantID, "BET-03", 1)
		err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
				return repo.Save(ctx, e)
			}); err != nil {
				return err
			}
			return shared.ErrInvalidState
		})
		assert.Error(t, err)

		_, err = repo.FindByIDForTenant(ctx, tenantID, e.ID)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormEquipmentRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEquipmentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	e := newTestEquipment(t, tenantID, "AND-01", 10)
	require.NoError(t, repo.Save(ctx, e))

	first, err := repo.FindByIDForTenant(ctx, tenantID, e.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, e.ID)
	require.NoError(t, err)

	_, err = first.Move(inventory.MovementReservation, 4, inventory.MovementRef{})
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	_, err = second.Move(inventory.MovementReservation, 8, inventory.MovementRef{})
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByIDForTenant(ctx, tenantID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Stock.Available)
	assert.Equal(t, 4, stored.Stock.Reserved)
	assert.Equal(t, 10, stored.Stock.Total)

	t.Run("a saved aggregate can be saved again", func(t *testing.T) {
		_, err := first.Move(inventory.MovementRelease, 4, inventory.MovementRef{})
		require.NoError(t, err)
		assert.NoError(t, repo.SaveWithLock(ctx, first))
	})
}

func TestGormEquipmentRepository_TenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEquipmentRepository(db)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	e := newTestEquipment(t, tenantA, "AND-01", 3)
	require.NoError(t, repo.Save(ctx, e))
	require.NoError(t, repo.Save(ctx, newTestEquipment(t, tenantB, "AND-01", 1)))

	_, err := repo.FindByIDForTenant(ctx, tenantB, e.ID)
	assert.True(t, shared.IsNotFound(err))

	exists, err := repo.ExistsByCode(ctx, tenantA, "AND-01")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountForTenant(ctx, tenantA, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = repo.DeleteForTenant(ctx, tenantB, e.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestGormEquipmentRepository_Aggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEquipmentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestEquipment(t, tenantID, "A", 10)))
	require.NoError(t, repo.Save(ctx, newTestEquipment(t, tenantID, "B", 1)))
	inactive := newTestEquipment(t, tenantID, "C", 0)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	sum, err := repo.SumStock(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 11, sum.Total)
	assert.Equal(t, 11, sum.Available)

	low, err := repo.FindLowAvailability(ctx, tenantID, 2)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "B", low[0].Code)

	byStatus, err := repo.CountByStatus(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[inventory.EquipmentStatusActive])
	assert.Equal(t, int64(1), byStatus[inventory.EquipmentStatusInactive])

	filter := shared.DefaultFilter()
	filter.Search = "betoneira b"
	found, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "B", found[0].Code)
}

func TestGormStockMovementRepository_FindForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	e := newTestEquipment(t, tenantID, "GER-01", 0)
	for _, kind := range []inventory.MovementType{inventory.MovementPurchase, inventory.MovementMaintenanceIn, inventory.MovementMaintenanceOut} {
		m, err := e.Move(kind, 2, inventory.MovementRef{Reason: "test"})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, m))
	}

	all, total, err := repo.FindForTenant(ctx, tenantID, inventory.MovementFilter{EquipmentID: &e.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	maint, total, err := repo.FindForTenant(ctx, tenantID, inventory.MovementFilter{Type: inventory.MovementMaintenanceIn})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, maint, 1)
	assert.Equal(t, 2, maint[0].After.Maintenance)

	paged, total, err := repo.FindForTenant(ctx, tenantID, inventory.MovementFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestGormBookingRepository_SaveReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()
	tenantID, customerID := uuid.New(), uuid.New()
	e := newTestEquipment(t, tenantID, "AND-01", 5)
	other := newTestEquipment(t, tenantID, "AND-02", 5)

	b := newTestBooking(t, tenantID, customerID, e, 2, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, b))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.Equal(t, b.ID, loaded.Items[0].BookingID)

	item, err := booking.NewItem(other.ID, other.Name, 1, 3, decimal.NewFromInt(90))
	require.NoError(t, err)
	require.NoError(t, loaded.Update(loaded.Terms, []booking.Item{item}))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, other.ID, reloaded.Items[0].EquipmentID)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.NewFromInt(90)))

	t.Run("stale copy is rejected", func(t *testing.T) {
		b.Notes = "stale"
		b.Touch()
		assert.ErrorIs(t, repo.SaveWithLock(ctx, b), shared.ErrConcurrencyConflict)
	})

	t.Run("open bookings are visible per customer and equipment", func(t *testing.T) {
		open, err := repo.HasOpenForCustomer(ctx, tenantID, customerID)
		require.NoError(t, err)
		assert.True(t, open)

		open, err = repo.HasOpenForEquipment(ctx, tenantID, other.ID)
		require.NoError(t, err)
		assert.True(t, open)

		open, err = repo.HasOpenForEquipment(ctx, tenantID, e.ID)
		require.NoError(t, err)
		assert.False(t, open)
	})

	t.Run("delete removes items", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, b.ID))
		var count int64
		require.NoError(t, db.Model(&models.BookingItemModel{}).Where("booking_id = ?", b.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestGormBookingRepository_NextSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextSequence(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := repo.NextSequence(ctx, tenantB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	u, err := identity.NewUser(tenantID, "Maria Souza", "Maria@Example.com", "s3cret-pass", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "  maria@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	exists, err := repo.ExistsByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	dup, err := identity.NewUser(uuid.New(), "Other", "maria@example.com", "s3cret-pass", identity.RoleViewer)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), u.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestGormTenantRepository_FindActiveIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	active, err := identity.NewTenant("Locadora Alfa", "", "alfa@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, active))

	suspended, err := identity.NewTenant("Locadora Beta", "", "beta@example.com")
	require.NoError(t, err)
	suspended.Suspend()
	require.NoError(t, repo.Save(ctx, suspended))

	ids, err := repo.FindActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{active.ID}, ids)

	bySlug, err := repo.FindBySlug(ctx, active.Slug)
	require.NoError(t, err)
	assert.Equal(t, active.ID, bySlug.ID)
}

func TestGormCustomerRepository_ExistsByDocument(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	c, err := partner.NewCustomer(tenantID, partner.CustomerProfile{Name: "João da Silva", Document: "529.982.247-25"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	exists, err := repo.ExistsByDocument(ctx, tenantID, "52998224725", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByDocument(ctx, tenantID, "52998224725", &c.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByDocument(ctx, uuid.New(), "52998224725", nil)
	require.NoError(t, err)
	assert.False(t, exists)

	filter := shared.DefaultFilter().With("type", partner.CustomerTypeIndividual)
	filter.Search = "silva"
	list, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGormTransactionRepository_SummarizeAndOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransactionRepository(db)
	categories := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rental, err := finance.NewCategory(tenantID, finance.RentalCategoryName, finance.TransactionTypeIncome, "#22C55E")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, rental))

	newTx := func(kind finance.TransactionType, amount int64, due time.Time, categoryID *uuid.UUID) *finance.Transaction {
		tx, err := finance.NewTransaction(tenantID, kind, finance.TransactionDetails{
			Description:   "lançamento",
			Amount:        decimal.NewFromInt(amount),
			DueDate:       due,
			PaymentMethod: finance.PaymentMethodPix,
			CategoryID:    categoryID,
		})
		require.NoError(t, err)
		return tx
	}

	paidIncome := newTx(finance.TransactionTypeIncome, 500, from.AddDate(0, 0, 2), &rental.ID)
	require.NoError(t, paidIncome.MarkPaid(from.AddDate(0, 0, 3), finance.PaymentMethodPix))
	paidExpense := newTx(finance.TransactionTypeExpense, 120, from.AddDate(0, 0, 4), nil)
	require.NoError(t, paidExpense.MarkPaid(from.AddDate(0, 0, 4), finance.PaymentMethodCash))
	pending := newTx(finance.TransactionTypeIncome, 300, from.AddDate(0, 0, 5), &rental.ID)
	later := newTx(finance.TransactionTypeIncome, 80, from.AddDate(0, 0, 20), nil)
	for _, tx := range []*finance.Transaction{paidIncome, paidExpense, pending, later} {
		require.NoError(t, repo.Save(ctx, tx))
	}

	changed, err := repo.MarkOverdue(ctx, tenantID, from.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	summary, err := repo.Summarize(ctx, tenantID, from, to)
	require.NoError(t, err)
	assert.True(t, summary.PaidIncome.Equal(decimal.NewFromInt(500)), summary.PaidIncome.String())
	assert.True(t, summary.PaidExpense.Equal(decimal.NewFromInt(120)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(380)))
	assert.True(t, summary.PendingReceivable.Equal(decimal.NewFromInt(380)))
	assert.Equal(t, int64(1), summary.OverdueCount)
	assert.True(t, summary.OverdueAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, summary.ByCategory, 2)
	assert.Equal(t, finance.RentalCategoryName, summary.ByCategory[0].Name)

	inUse, err := categories.IsInUse(ctx, tenantID, rental.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestGormReportReadModel_DailyBookings(t *testing.T) {
	db := setupTestDB(t)
	bookings := NewGormBookingRepository(db)
	reports := NewGormReportReadModel(db)
	ctx := context.Background()
	tenantID, customerID := uuid.New(), uuid.New()
	e := newTestEquipment(t, tenantID, "AND-01", 10)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, start := range []time.Time{day.Add(9 * time.Hour), day.Add(15 * time.Hour), day.AddDate(0, 0, 2).Add(8 * time.Hour)} {
		require.NoError(t, bookings.Save(ctx, newTestBooking(t, tenantID, customerID, e, 1, start)))
	}
	cancelled := newTestBooking(t, tenantID, customerID, e, 1, day.Add(10*time.Hour))
	_, err := cancelled.Cancel("cliente desistiu")
	require.NoError(t, err)
	require.NoError(t, bookings.Save(ctx, cancelled))

	days, err := reports.DailyBookings(ctx, tenantID, day, day.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, int64(2), days[0].Count)
	assert.True(t, days[0].Revenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, int64(0), days[1].Count)
	assert.Equal(t, int64(1), days[2].Count)

	top, err := reports.TopEquipment(ctx, tenantID, day, day.AddDate(0, 0, 3), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, e.ID, top[0].EquipmentID)
	assert.Equal(t, int64(3), top[0].Quantity)

	byStatus, err := reports.BookingsByStatus(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), byStatus[string(booking.StatusPending)])
	assert.Equal(t, int64(1), byStatus[string(booking.StatusCancelled)])
}
