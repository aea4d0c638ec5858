package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/billing"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrSelfDelete     = shared.NewDomainError(shared.CodeInvalidInput, "You cannot delete your own user")
	ErrSelfDeactivate = shared.NewDomainError(shared.CodeInvalidInput, "You cannot deactivate your own user")
	ErrRoleNotAllowed = shared.NewDomainError(shared.CodeForbidden, "You cannot assign this role")
)

// UserService handles user management operations inside a tenant
type UserService struct {
	users    identity.UserRepository
	limits   LimitChecker
	activity ActivityRecorder
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users identity.UserRepository,
	limits LimitChecker,
	activity ActivityRecorder,
	events shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		limits:   limits,
		activity: activity,
		events:   events,
		logger:   logger,
	}
}

// Create creates a new user, honouring the plan user limit
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	role, ok := identity.ParseRole(input.Role)
	if !ok {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown role %q", input.Role)
	}
	if !role.AssignableBy(input.ActorRole) {
		return nil, ErrRoleNotAllowed
	}

	count, err := s.users.CountForTenant(ctx, input.TenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	if err := s.limits.CheckLimit(ctx, input.TenantID, billing.LimitUsers, count); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Email is already registered")
	}

	user, err := identity.NewUser(input.TenantID, input.Name, email, input.Password, role)
	if err != nil {
		return nil, err
	}
	user.SetCreatedBy(input.ActorID)
	shared.StampActor(user.GetDomainEvents(), input.ActorID)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	dto := toUserDTO(user)
	return &dto, nil
}

// GetByID returns one user of the tenant
func (s *UserService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, f UserListFilter) (*shared.Paginated[UserDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = strings.TrimSpace(f.Search)
	if role, ok := identity.ParseRole(f.Role); ok {
		filter = filter.With("role", string(role))
	}
	if f.Active != nil {
		filter = filter.With("active", *f.Active)
	}

	users, err := s.users.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]UserDTO, len(users))
	for i := range users {
		items[i] = toUserDTO(&users[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update changes name, role or active flag
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.users.FindByIDForTenant(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	name := user.Name
	if input.Name != nil {
		name = *input.Name
	}
	role := user.Role
	if input.Role != nil {
		parsed, ok := identity.ParseRole(*input.Role)
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown role %q", *input.Role)
		}
		if parsed != user.Role && (!parsed.AssignableBy(input.ActorRole) || !user.Role.AssignableBy(input.ActorRole)) {
			return nil, ErrRoleNotAllowed
		}
		role = parsed
	}
	if err := user.Update(name, role); err != nil {
		return nil, err
	}

	if input.Active != nil {
		if *input.Active {
			user.Activate()
		} else {
			if user.ID == input.ActorID {
				return nil, ErrSelfDeactivate
			}
			user.Deactivate()
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	shared.StampActor(user.GetDomainEvents(), input.ActorID)
	s.publish(ctx, user)
	s.activity.Record(ctx, audit.Entry{
		TenantID:    input.TenantID,
		UserID:      &input.ActorID,
		Action:      audit.ActionUpdate,
		EntityType:  identity.AggregateTypeUser,
		EntityID:    &user.ID,
		Description: "User updated: " + user.Email,
		Metadata:    map[string]any{"role": string(user.Role), "active": user.Active},
	})

	dto := toUserDTO(user)
	return &dto, nil
}

// Delete removes a user. Users cannot delete themselves
func (s *UserService) Delete(ctx context.Context, tenantID, id, actorID uuid.UUID) error {
	if id == actorID {
		return ErrSelfDelete
	}
	user, err := s.users.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.users.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, audit.Entry{
		TenantID:    tenantID,
		UserID:      &actorID,
		Action:      audit.ActionDelete,
		EntityType:  identity.AggregateTypeUser,
		EntityID:    &user.ID,
		Description: "User deleted: " + user.Email,
	})
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) publish(ctx context.Context, agg shared.AggregateRoot) {
	if err := shared.PublishAndClear(ctx, s.events, agg); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}
