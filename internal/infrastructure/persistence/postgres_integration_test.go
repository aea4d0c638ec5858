//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/locaflow/backend/internal/infrastructure/migration"
	"github.com/locaflow/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// newPostgres starts a throwaway Postgres and applies the embedded migrations
func newPostgres(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("locaflow_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "locaflow_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		TenantGuard:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())
	// a second run finds nothing to apply
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_BookingFlow(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()

	tenants := NewGormTenantRepository(db.DB)
	customers := NewGormCustomerRepository(db.DB)
	equipment := NewGormEquipmentRepository(db.DB)
	bookings := NewGormBookingRepository(db.DB)

	tenant, err := identity.NewTenant("Locadora Alfa", "", "alfa@example.com")
	require.NoError(t, err)
	require.NoError(t, tenants.Save(ctx, tenant))
	other, err := identity.NewTenant("Locadora Beta", "", "beta@example.com")
	require.NoError(t, err)
	require.NoError(t, tenants.Save(ctx, other))

	customer, err := partner.NewCustomer(tenant.ID, partner.CustomerProfile{Name: "João da Silva", Document: "52998224725"})
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	e := newTestEquipment(t, tenant.ID, "AND-01", 5)
	require.NoError(t, equipment.Save(ctx, e))

	b := newTestBooking(t, tenant.ID, customer.ID, e, 2, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, bookings.Save(ctx, b))

	t.Run("loads items and totals", func(t *testing.T) {
		loaded, err := bookings.FindByIDForTenant(ctx, tenant.ID, b.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.True(t, loaded.TotalAmount.Equal(b.TotalAmount))
	})

	t.Run("other tenants cannot see the booking", func(t *testing.T) {
		_, err := bookings.FindByIDForTenant(ctx, other.ID, b.ID)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("sequence is per tenant", func(t *testing.T) {
		first, err := bookings.NextSequence(ctx, tenant.ID)
		require.NoError(t, err)
		second, err := bookings.NextSequence(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, first+1, second)

		otherFirst, err := bookings.NextSequence(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), otherFirst)
	})

	t.Run("active tenants are listed for jobs", func(t *testing.T) {
		ids, err := tenants.FindActiveIDs(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{tenant.ID, other.ID}, ids)
	})
}
