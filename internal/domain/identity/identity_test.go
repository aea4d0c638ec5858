package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	tenant, err := NewTenant("Locadora São João", "11.222.333/0001-81", "Contato@Locadora.com.br")
	require.NoError(t, err)
	assert.Equal(t, "locadora-sao-joao", tenant.Slug)
	assert.Equal(t, "11222333000181", tenant.Document)
	assert.Equal(t, "contato@locadora.com.br", tenant.Email)
	assert.Equal(t, TenantStatusTrial, tenant.Status)
	assert.True(t, tenant.CanOperate())
	require.Len(t, tenant.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeTenantCreated, tenant.GetDomainEvents()[0].EventType())

	_, err = NewTenant("", "", "a@b.com")
	assert.Error(t, err)
	_, err = NewTenant("X", "11.222.333/0001-82", "a@b.com")
	assert.Error(t, err)
}

func TestTenantFiscalSettings(t *testing.T) {
	tenant, err := NewTenant("Acme", "", "acme@example.com")
	require.NoError(t, err)
	assert.False(t, tenant.Fiscal.IsComplete())

	err = tenant.SetFiscalSettings(FiscalSettings{MunicipalRegistration: "123.456", ServiceCode: "3.01", ISSRate: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "123456", tenant.Fiscal.MunicipalRegistration)
	assert.True(t, tenant.Fiscal.IsComplete())

	err = tenant.SetFiscalSettings(FiscalSettings{ISSRate: decimal.NewFromInt(6)})
	assert.Error(t, err)
}

func TestTenantLifecycle(t *testing.T) {
	tenant, _ := NewTenant("Acme", "", "acme@example.com")
	tenant.Suspend()
	assert.False(t, tenant.CanOperate())
	require.NoError(t, tenant.Activate())
	assert.True(t, tenant.CanOperate())
	tenant.Cancel()
	assert.Error(t, tenant.Activate())
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Can(ResourceLead, ActionDelete))
	assert.True(t, RoleAdmin.Can(ResourceInvoice, ActionCreate))
	assert.False(t, RoleAdmin.Can(ResourceLead, ActionRead))
	assert.True(t, RoleManager.Can(ResourceBooking, ActionDelete))
	assert.False(t, RoleManager.Can(ResourceFinance, ActionCreate))
	assert.True(t, RoleOperator.Can(ResourceBooking, ActionCreate))
	assert.False(t, RoleOperator.Can(ResourceBooking, ActionDelete))
	assert.False(t, RoleOperator.Can(ResourceEquipment, ActionUpdate))
	assert.True(t, RoleFinancial.Can(ResourceFinance, ActionDelete))
	assert.False(t, RoleFinancial.Can(ResourceStock, ActionRead))
	assert.True(t, RoleViewer.Can(ResourceReport, ActionRead))
	assert.False(t, RoleViewer.Can(ResourceCustomer, ActionUpdate))
	assert.False(t, Role("GHOST").Can(ResourceCustomer, ActionRead))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, r)
	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestRoleAssignableBy(t *testing.T) {
	assert.True(t, RoleManager.AssignableBy(RoleAdmin))
	assert.False(t, RoleSuperAdmin.AssignableBy(RoleAdmin))
	assert.False(t, RoleViewer.AssignableBy(RoleManager))
}

func TestUserPasswords(t *testing.T) {
	u, err := NewUser(uuid.New(), "Maria Souza", "Maria@Example.com", "segredo123", RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.True(t, u.VerifyPassword("segredo123"))
	assert.False(t, u.VerifyPassword("wrong"))

	assert.Error(t, u.ChangePassword("wrong", "novaSenha1"))
	require.NoError(t, u.ChangePassword("segredo123", "novaSenha1"))
	assert.True(t, u.VerifyPassword("novaSenha1"))

	_, err = NewUser(uuid.New(), "X", "x@example.com", "short", RoleViewer)
	assert.Error(t, err)
	_, err = NewUser(uuid.New(), "X", "x@example.com", "onlyletters", RoleViewer)
	assert.Error(t, err)
	_, err = NewUser(uuid.New(), "X", "not-an-email", "segredo123", RoleViewer)
	assert.Error(t, err)
}

func TestUserLockout(t *testing.T) {
	u, err := NewUser(uuid.New(), "João", "joao@example.com", "segredo123", RoleViewer)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.False(t, u.RecordLoginFailure(5, 15*time.Minute))
	}
	assert.True(t, u.RecordLoginFailure(5, 15*time.Minute))
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())

	u.Unlock()
	assert.True(t, u.CanLogin())

	u.RecordLoginFailure(5, time.Minute)
	u.RecordLoginSuccess("10.0.0.1")
	assert.Equal(t, 0, u.FailedAttempts)
	assert.NotNil(t, u.LastLoginAt)

	u.Deactivate()
	assert.False(t, u.CanLogin())
}

func TestAPIKey(t *testing.T) {
	tenantID := uuid.New()
	key, plain, err := NewAPIKey(tenantID, "ERP integration", RoleManager, nil)
	require.NoError(t, err)
	assert.True(t, LooksLikeAPIKey(plain))
	assert.Equal(t, plain[:12], key.Prefix)
	assert.Equal(t, HashSecret(plain), key.KeyHash)
	assert.NotContains(t, key.KeyHash, plain)
	assert.True(t, key.IsUsable(time.Now()))

	require.NoError(t, key.Revoke())
	assert.False(t, key.IsUsable(time.Now()))
	assert.Error(t, key.Revoke())

	past := time.Now().Add(-time.Hour)
	_, _, err = NewAPIKey(tenantID, "old", RoleViewer, &past)
	assert.Error(t, err)
	_, _, err = NewAPIKey(tenantID, "root", RoleSuperAdmin, nil)
	assert.Error(t, err)

	future := time.Now().Add(time.Hour)
	expiring, _, err := NewAPIKey(tenantID, "temp", RoleViewer, &future)
	require.NoError(t, err)
	assert.False(t, expiring.IsUsable(future.Add(time.Second)))

	assert.False(t, LooksLikeAPIKey("eyJhbGciOiJIUzI1NiJ9.payload.sig"))
}

func TestPasswordResetToken(t *testing.T) {
	u, err := NewUser(uuid.New(), "Ana", "ana@example.com", "segredo123", RoleAdmin)
	require.NoError(t, err)
	now := time.Now()

	token, plain, err := NewPasswordResetToken(u, now)
	require.NoError(t, err)
	assert.Len(t, plain, 48)
	assert.Equal(t, HashSecret(plain), token.TokenHash)
	assert.NoError(t, token.Validate(now.Add(59*time.Minute)))
	assert.ErrorIs(t, token.Validate(now.Add(time.Hour)), ErrResetTokenInvalid)

	token.MarkUsed(now)
	assert.ErrorIs(t, token.Validate(now), ErrResetTokenInvalid)
}
