package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// Action classifies an activity entry
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionStatusChange Action = "STATUS_CHANGE"
	ActionLogin        Action = "LOGIN"
	ActionLogout       Action = "LOGOUT"
	ActionExport       Action = "EXPORT"
)

// IsValid returns true for known actions
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionStatusChange, ActionLogin, ActionLogout, ActionExport:
		return true
	}
	return false
}

// ActivityLog is an append-only record of something a user did
type ActivityLog struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	UserID      *uuid.UUID
	UserName    string
	Action      Action
	EntityType  string
	EntityID    *uuid.UUID
	Description string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

// Entry is the input of NewActivityLog
type Entry struct {
	TenantID    uuid.UUID
	UserID      *uuid.UUID
	UserName    string
	Action      Action
	EntityType  string
	EntityID    *uuid.UUID
	Description string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
}

// NewActivityLog validates and stamps an entry
func NewActivityLog(e Entry) (*ActivityLog, error) {
	if e.TenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Activity requires a tenant")
	}
	if !e.Action.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid activity action %q", e.Action)
	}
	if e.UserID != nil && *e.UserID == uuid.Nil {
		e.UserID = nil
	}
	if e.EntityID != nil && *e.EntityID == uuid.Nil {
		e.EntityID = nil
	}
	return &ActivityLog{
		ID:          uuid.New(),
		TenantID:    e.TenantID,
		UserID:      e.UserID,
		UserName:    strings.TrimSpace(e.UserName),
		Action:      e.Action,
		EntityType:  strings.TrimSpace(e.EntityType),
		EntityID:    e.EntityID,
		Description: truncate(strings.TrimSpace(e.Description), 500),
		Metadata:    e.Metadata,
		IPAddress:   e.IPAddress,
		UserAgent:   truncate(e.UserAgent, 255),
		CreatedAt:   time.Now(),
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Repository persists activity entries. There is no update or delete
type Repository interface {
	Create(ctx context.Context, log *ActivityLog) error
	// FindAllForTenant honours the "entity_type", "entity_id", "user_id" and "action"
	// filter keys and the From/To window on created_at
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ActivityLog, int64, error)
}
