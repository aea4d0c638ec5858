package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LeadService captures and follows up platform leads
type LeadService struct {
	leadRepo partner.LeadRepository
	logger   *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(leadRepo partner.LeadRepository, logger *zap.Logger) *LeadService {
	return &LeadService{leadRepo: leadRepo, logger: logger}
}

// Capture stores a contact from the public site
func (s *LeadService) Capture(ctx context.Context, req CaptureLeadRequest) (*LeadResponse, error) {
	lead, err := partner.NewLead(req.Name, req.Email, req.Phone, req.Company, req.Message, req.Source)
	if err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.logger.Info("Lead captured",
		zap.String("lead_id", lead.ID.String()),
		zap.String("source", lead.Source),
	)
	response := ToLeadResponse(lead)
	return &response, nil
}

// List returns a page of leads, newest first
func (s *LeadService) List(ctx context.Context, page, pageSize int, search, status string) (*shared.Paginated[LeadResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = min(pageSize, 100)
	}
	filter.Search = strings.TrimSpace(search)
	if status != "" {
		st := partner.LeadStatus(strings.ToUpper(status))
		if !st.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown lead status %q", status)
		}
		filter = filter.With("status", string(st))
	}

	leads, err := s.leadRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.leadRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = ToLeadResponse(&leads[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ChangeStatus moves a lead through follow-up
func (s *LeadService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lead.ChangeStatus(partner.LeadStatus(strings.ToUpper(status))); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	response := ToLeadResponse(lead)
	return &response, nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.leadRepo.Delete(ctx, id)
}
