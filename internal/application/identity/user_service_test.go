package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userFixture struct {
	service  *UserService
	users    *MockUserRepository
	limits   *MockLimitChecker
	activity *recordedActivity
	events   *capturedEvents
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    new(MockUserRepository),
		limits:   new(MockLimitChecker),
		activity: &recordedActivity{},
		events:   &capturedEvents{},
	}
	f.service = NewUserService(f.users, f.limits, f.activity, f.events, zap.NewNop())
	return f
}

func TestUserService_Create(t *testing.T) {
	tenantID, actorID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(1), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitUsers, int64(1)).Return(nil)
		f.users.On("ExistsByEmail", mock.Anything, "op@locadora.com.br").Return(false, nil)
		f.users.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		dto, err := f.service.Create(context.Background(), CreateUserInput{
			TenantID:  tenantID,
			ActorID:   actorID,
			ActorRole: identity.RoleAdmin,
			Name:      "Operador",
			Email:     " OP@locadora.com.br ",
			Password:  testPassword,
			Role:      "operator",
		})
		require.NoError(t, err)
		assert.Equal(t, string(identity.RoleOperator), dto.Role)
		assert.Equal(t, "op@locadora.com.br", dto.Email)

		require.Len(t, f.events.events, 1)
		assert.Equal(t, actorID, f.events.events[0].(shared.ActorAware).ActorID())
	})

	t.Run("plan limit reached", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(2), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitUsers, int64(2)).Return(shared.ErrPlanLimitReached)

		_, err := f.service.Create(context.Background(), CreateUserInput{
			TenantID: tenantID, ActorRole: identity.RoleAdmin, Name: "X", Email: "x@y.com", Password: testPassword, Role: "VIEWER",
		})
		assert.ErrorIs(t, err, shared.ErrPlanLimitReached)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot create super admin", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.service.Create(context.Background(), CreateUserInput{
			TenantID: tenantID, ActorRole: identity.RoleAdmin, Role: "SUPER_ADMIN",
		})
		assert.ErrorIs(t, err, ErrRoleNotAllowed)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newUserFixture()
		_, err := f.service.Create(context.Background(), CreateUserInput{TenantID: tenantID, Role: "OWNER"})
		assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(0), nil)
		f.limits.On("CheckLimit", mock.Anything, tenantID, billing.LimitUsers, int64(0)).Return(nil)
		f.users.On("ExistsByEmail", mock.Anything, "x@y.com").Return(true, nil)

		_, err := f.service.Create(context.Background(), CreateUserInput{
			TenantID: tenantID, ActorRole: identity.RoleAdmin, Name: "X", Email: "x@y.com", Password: testPassword, Role: "VIEWER",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestUserService_Update(t *testing.T) {
	tenantID := uuid.New()

	t.Run("changes role and deactivates", func(t *testing.T) {
		f := newUserFixture()
		user := createTestUser(t, tenantID)
		f.users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)
		f.users.On("Save", mock.Anything, user).Return(nil)

		role, active := "FINANCIAL", false
		dto, err := f.service.Update(context.Background(), UpdateUserInput{
			TenantID: tenantID, ID: user.ID, ActorID: uuid.New(), ActorRole: identity.RoleAdmin,
			Role: &role, Active: &active,
		})
		require.NoError(t, err)
		assert.Equal(t, "FINANCIAL", dto.Role)
		assert.False(t, dto.Active)
		assert.Equal(t, []string{identity.EventTypeUserDeactivated}, f.events.types())
		assert.Equal(t, []audit.Action{audit.ActionUpdate}, f.activity.actions())
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		f := newUserFixture()
		user := createTestUser(t, tenantID)
		f.users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)

		active := false
		_, err := f.service.Update(context.Background(), UpdateUserInput{
			TenantID: tenantID, ID: user.ID, ActorID: user.ID, ActorRole: identity.RoleAdmin, Active: &active,
		})
		assert.ErrorIs(t, err, ErrSelfDeactivate)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("manager cannot promote", func(t *testing.T) {
		f := newUserFixture()
		user := createTestUser(t, tenantID)
		f.users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)

		role := "ADMIN"
		_, err := f.service.Update(context.Background(), UpdateUserInput{
			TenantID: tenantID, ID: user.ID, ActorID: uuid.New(), ActorRole: identity.RoleManager, Role: &role,
		})
		assert.ErrorIs(t, err, ErrRoleNotAllowed)
	})
}

func TestUserService_Delete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("cannot delete self", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		assert.ErrorIs(t, f.service.Delete(context.Background(), tenantID, id, id), ErrSelfDelete)
		f.users.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newUserFixture()
		user := createTestUser(t, tenantID)
		f.users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)
		f.users.On("DeleteForTenant", mock.Anything, tenantID, user.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), tenantID, user.ID, uuid.New()))
		assert.Equal(t, []audit.Action{audit.ActionDelete}, f.activity.actions())
	})

	t.Run("not found", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		f.users.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)
		assert.True(t, shared.IsNotFound(f.service.Delete(context.Background(), tenantID, id, uuid.New())))
	})
}

func TestUserService_List(t *testing.T) {
	f := newUserFixture()
	tenantID := uuid.New()
	user := createTestUser(t, tenantID)
	active := true

	match := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 100 && filter.Filters["role"] == "MANAGER" && filter.Filters["active"] == true
	})
	f.users.On("FindAllForTenant", mock.Anything, tenantID, match).Return([]identity.User{*user}, nil)
	f.users.On("CountForTenant", mock.Anything, tenantID, match).Return(int64(101), nil)

	page, err := f.service.List(context.Background(), tenantID, UserListFilter{Page: 2, PageSize: 500, Role: "manager", Active: &active})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestAPIKeyService(t *testing.T) {
	newService := func() (*APIKeyService, *MockAPIKeyRepository, *MockTenantRepository) {
		keys, tenants := new(MockAPIKeyRepository), new(MockTenantRepository)
		return NewAPIKeyService(keys, tenants, &recordedActivity{}, zap.NewNop()), keys, tenants
	}

	t.Run("create returns the plaintext once", func(t *testing.T) {
		svc, keys, _ := newService()
		var saved *identity.APIKey
		keys.On("Save", mock.Anything, mock.AnythingOfType("*identity.APIKey")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*identity.APIKey) }).
			Return(nil)

		created, err := svc.Create(context.Background(), CreateAPIKeyInput{TenantID: uuid.New(), ActorID: uuid.New(), Name: "ERP", Role: "operator"})
		require.NoError(t, err)
		assert.True(t, identity.LooksLikeAPIKey(created.Key))
		assert.Equal(t, created.Key[:12], created.Prefix)
		assert.Equal(t, identity.HashSecret(created.Key), saved.KeyHash)
		assert.Equal(t, identity.RoleOperator, saved.Role)
	})

	t.Run("authenticate", func(t *testing.T) {
		svc, keys, tenants := newService()
		tenant := createTestTenant(t)
		key, plain, err := identity.NewAPIKey(tenant.ID, "ERP", identity.RoleViewer, nil)
		require.NoError(t, err)

		keys.On("FindByHash", mock.Anything, identity.HashSecret(plain)).Return(key, nil)
		tenants.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
		keys.On("TouchLastUsed", mock.Anything, key.ID, mock.AnythingOfType("time.Time")).Return(nil)

		principal, err := svc.Authenticate(context.Background(), plain)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, principal.TenantID)
		assert.Equal(t, identity.RoleViewer, principal.Role)
		keys.AssertExpectations(t)
	})

	t.Run("rejects revoked, expired and malformed keys", func(t *testing.T) {
		svc, keys, _ := newService()
		revoked, revokedPlain, err := identity.NewAPIKey(uuid.New(), "old", identity.RoleViewer, nil)
		require.NoError(t, err)
		require.NoError(t, revoked.Revoke())

		soon := time.Now().Add(time.Minute)
		expired, expiredPlain, err := identity.NewAPIKey(uuid.New(), "tmp", identity.RoleViewer, &soon)
		require.NoError(t, err)
		past := time.Now().Add(-time.Minute)
		expired.ExpiresAt = &past

		keys.On("FindByHash", mock.Anything, identity.HashSecret(revokedPlain)).Return(revoked, nil)
		keys.On("FindByHash", mock.Anything, identity.HashSecret(expiredPlain)).Return(expired, nil)

		for _, plain := range []string{revokedPlain, expiredPlain, "lf_short", "Bearer xyz"} {
			_, err := svc.Authenticate(context.Background(), plain)
			assert.ErrorIs(t, err, ErrInvalidAPIKey, plain)
		}
		keys.AssertNotCalled(t, "TouchLastUsed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("revoke", func(t *testing.T) {
		svc, keys, _ := newService()
		key, _, err := identity.NewAPIKey(uuid.New(), "ERP", identity.RoleViewer, nil)
		require.NoError(t, err)
		keys.On("FindByIDForTenant", mock.Anything, key.TenantID, key.ID).Return(key, nil)
		keys.On("Save", mock.Anything, key).Return(nil)

		require.NoError(t, svc.Revoke(context.Background(), key.TenantID, key.ID, uuid.New()))
		assert.NotNil(t, key.RevokedAt)
		assert.Error(t, svc.Revoke(context.Background(), key.TenantID, key.ID, uuid.New()))
	})
}
