package partner

import (
	"strings"
	"time"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
)

// LeadStatus tracks a sales prospect through follow-up
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusDiscarded LeadStatus = "DISCARDED"
)

// IsValid returns true for known statuses
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusDiscarded:
		return true
	}
	return false
}

// Lead is a platform-level prospect captured from the public site. It has no tenant
type Lead struct {
	shared.BaseEntity
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
	Source  string
	Status  LeadStatus
}

// NewLead validates a captured contact
func NewLead(name, email, phone, company, message, source string) (*Lead, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(message) > 2000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 2000 characters")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "website"
	}
	return &Lead{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Phone:      valueobject.OnlyDigits(phone),
		Company:    strings.TrimSpace(company),
		Message:    strings.TrimSpace(message),
		Source:     source,
		Status:     LeadStatusNew,
	}, nil
}

// ChangeStatus moves the lead to status. Converted and discarded leads are final
func (l *Lead) ChangeStatus(status LeadStatus) error {
	if !status.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Invalid lead status %q", status)
	}
	if l.Status == LeadStatusConverted || l.Status == LeadStatusDiscarded {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Lead is already %s", l.Status)
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return nil
}
