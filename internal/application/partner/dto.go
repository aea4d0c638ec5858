package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name                  string
	TradeName             string
	Document              string
	StateRegistration     string
	MunicipalRegistration string
	Email                 string
	Phone                 string
	Mobile                string
	Address               valueobject.Address
	Notes                 string
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	CreateCustomerRequest
	Active *bool
}

// CustomerListFilter narrows the customer list
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string
	Type     string
	Active   *bool
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                    uuid.UUID           `json:"id"`
	Type                  string              `json:"type"`
	Name                  string              `json:"name"`
	TradeName             string              `json:"trade_name,omitempty"`
	Document              string              `json:"document"`
	FormattedDocument     string              `json:"formatted_document"`
	StateRegistration     string              `json:"state_registration,omitempty"`
	MunicipalRegistration string              `json:"municipal_registration,omitempty"`
	Email                 string              `json:"email,omitempty"`
	Phone                 string              `json:"phone,omitempty"`
	Mobile                string              `json:"mobile,omitempty"`
	Address               valueobject.Address `json:"address"`
	Notes                 string              `json:"notes,omitempty"`
	Active                bool                `json:"active"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// CaptureLeadRequest is a contact submitted from the public site
type CaptureLeadRequest struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
	Source  string
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message,omitempty"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r CreateCustomerRequest) profile() partner.CustomerProfile {
	return partner.CustomerProfile{
		Name:                  r.Name,
		TradeName:             r.TradeName,
		Document:              r.Document,
		StateRegistration:     r.StateRegistration,
		MunicipalRegistration: r.MunicipalRegistration,
		Contact: partner.CustomerContact{
			Email:  r.Email,
			Phone:  r.Phone,
			Mobile: r.Mobile,
		},
		Address: r.Address,
		Notes:   r.Notes,
	}
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                    c.ID,
		Type:                  string(c.Type),
		Name:                  c.Name,
		TradeName:             c.TradeName,
		Document:              c.Document,
		FormattedDocument:     c.FormattedDocument(),
		StateRegistration:     c.StateRegistration,
		MunicipalRegistration: c.MunicipalRegistration,
		Email:                 c.Email,
		Phone:                 c.Phone,
		Mobile:                c.Mobile,
		Address:               c.Address,
		Notes:                 c.Notes,
		Active:                c.Active,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// ToLeadResponse converts a domain Lead to LeadResponse
func ToLeadResponse(l *partner.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Message:   l.Message,
		Source:    l.Source,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
