package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/locaflow/backend/internal/application/identity"
	"github.com/locaflow/backend/internal/interfaces/http/dto"
)

// UserHandler manages the users of a tenant
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents a request to add a user
// @Description New user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=200" example:"Bruno Lima"`
	Email    string `json:"email" binding:"required,email,max=200" example:"bruno@locamais.com.br"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"S3nha-forte"`
	Role     string `json:"role" binding:"required,oneof=ADMIN MANAGER OPERATOR FINANCIAL VIEWER SUPER_ADMIN" example:"OPERATOR"`
}

// UpdateUserRequest changes name, role or active flag. Omitted fields are kept
// @Description User changes
type UpdateUserRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=200" example:"Bruno Lima"`
	Role   *string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER OPERATOR FINANCIAL VIEWER SUPER_ADMIN" example:"MANAGER"`
	Active *bool   `json:"active" example:"true"`
}

// UserListQuery filters the user list
type UserListQuery struct {
	dto.ListRequest
	Role string `form:"role" binding:"omitempty,max=20"`
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name or email"
// @Param        role query string false "Role filter"
// @Param        active query bool false "Active filter"
// @Success      200 {object} APIResponse[[]identityapp.UserDTO]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var q UserListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.Normalize()

	result, err := h.userService.List(c.Request.Context(), tenantID, identityapp.UserListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Role:     q.Role,
		Active:   optionalBoolQuery(c, "active"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Get godoc
// @ID           getUser
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create godoc
// @ID           createUser
// @Summary      Add a user
// @Description  The plan user limit applies. Only a super admin may grant SUPER_ADMIN
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "New user"
// @Success      201 {object} APIResponse[identityapp.UserDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identityapp.CreateUserInput{
		TenantID:  p.TenantID,
		ActorID:   p.UserID,
		ActorRole: p.Role,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update godoc
// @ID           updateUser
// @Summary      Update a user
// @Description  Users cannot deactivate themselves
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), identityapp.UpdateUserInput{
		TenantID:  p.TenantID,
		ID:        id,
		ActorID:   p.UserID,
		ActorRole: p.Role,
		Name:      req.Name,
		Role:      req.Role,
		Active:    req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete a user
// @Description  Users cannot delete themselves
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), tenantID, id, actorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// APIKeyHandler manages API keys
type APIKeyHandler struct {
	BaseHandler
	keyService *identityapp.APIKeyService
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keyService *identityapp.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keyService: keyService}
}

// CreateAPIKeyRequest describes a new key
// @Description New API key
type CreateAPIKeyRequest struct {
	Name      string     `json:"name" binding:"required,min=2,max=100" example:"ERP integration"`
	Role      string     `json:"role" binding:"required,oneof=ADMIN MANAGER OPERATOR FINANCIAL VIEWER" example:"OPERATOR"`
	ExpiresAt *time.Time `json:"expires_at" example:"2027-01-01T00:00:00Z"`
}

// List godoc
// @ID           listAPIKeys
// @Summary      List API keys
// @Tags         api-keys
// @Produce      json
// @Success      200 {object} APIResponse[[]identityapp.APIKeyDTO]
// @Security     CookieAuth
// @Router       /api-keys [get]
func (h *APIKeyHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	keys, err := h.keyService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, keys)
}

// Create godoc
// @ID           createAPIKey
// @Summary      Create an API key
// @Description  The plaintext key is returned only in this response
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Param        request body CreateAPIKeyRequest true "New key"
// @Success      201 {object} APIResponse[identityapp.CreatedAPIKey]
// @Failure      400 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /api-keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req CreateAPIKeyRequest
	if !h.bind(c, &req) {
		return
	}
	key, err := h.keyService.Create(c.Request.Context(), identityapp.CreateAPIKeyInput{
		TenantID:  tenantID,
		ActorID:   actorID(c),
		Name:      req.Name,
		Role:      req.Role,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, key)
}

// Revoke godoc
// @ID           revokeAPIKey
// @Summary      Revoke an API key
// @Tags         api-keys
// @Param        id path string true "Key ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /api-keys/{id} [delete]
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.keyService.Revoke(c.Request.Context(), tenantID, id, actorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
