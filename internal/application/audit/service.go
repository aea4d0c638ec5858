package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogDTO is the API view of an activity entry
type ActivityLogDTO struct {
	ID          uuid.UUID      `json:"id"`
	UserID      *uuid.UUID     `json:"user_id,omitempty"`
	UserName    string         `json:"user_name,omitempty"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    *uuid.UUID     `json:"entity_id,omitempty"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ListFilter narrows the activity list
type ListFilter struct {
	Page       int
	PageSize   int
	EntityType string
	EntityID   *uuid.UUID
	UserID     *uuid.UUID
	Action     string
	From       *time.Time
	To         *time.Time
}

// Service writes and reads the append-only activity log
type Service struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewService creates a new activity log service
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record stores an entry. Failures are logged and never reach the caller
func (s *Service) Record(ctx context.Context, entry audit.Entry) {
	log, err := audit.NewActivityLog(entry)
	if err != nil {
		s.logger.Warn("Discarding invalid activity entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err),
		)
		return
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Error("Failed to record activity",
			zap.String("tenant_id", entry.TenantID.String()),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}

// List returns a page of entries, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter) (*shared.Paginated[ActivityLogDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, 100)
	}
	filter.From = f.From
	filter.To = f.To
	if v := strings.TrimSpace(f.EntityType); v != "" {
		filter = filter.With("entity_type", v)
	}
	if f.EntityID != nil {
		filter = filter.With("entity_id", *f.EntityID)
	}
	if f.UserID != nil {
		filter = filter.With("user_id", *f.UserID)
	}
	if f.Action != "" {
		action := audit.Action(strings.ToUpper(f.Action))
		if !action.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown action %q", f.Action)
		}
		filter = filter.With("action", string(action))
	}

	logs, total, err := s.repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ActivityLogDTO, len(logs))
	for i := range logs {
		items[i] = toDTO(&logs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func toDTO(l *audit.ActivityLog) ActivityLogDTO {
	return ActivityLogDTO{
		ID:          l.ID,
		UserID:      l.UserID,
		UserName:    l.UserName,
		Action:      string(l.Action),
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Description: l.Description,
		Metadata:    l.Metadata,
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
		CreatedAt:   l.CreatedAt,
	}
}
