package partner

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
)

// CustomerType follows the document kind: CPF for individuals, CNPJ for companies
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "INDIVIDUAL"
	CustomerTypeCompany    CustomerType = "COMPANY"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// CustomerContact groups the contact fields
type CustomerContact struct {
	Email  string
	Phone  string
	Mobile string
}

// CustomerProfile is everything a user can edit on a customer
type CustomerProfile struct {
	Name                  string
	TradeName             string
	Document              string
	StateRegistration     string
	MunicipalRegistration string
	Contact               CustomerContact
	Address               valueobject.Address
	Notes                 string
}

// Customer is a person or company that rents equipment
type Customer struct {
	shared.TenantAggregateRoot
	Type                  CustomerType
	Name                  string
	TradeName             string
	Document              string
	StateRegistration     string
	MunicipalRegistration string
	CustomerContact
	Address valueobject.Address
	Notes   string
	Active  bool
}

// NewCustomer validates the profile and derives the type from the document
func NewCustomer(tenantID uuid.UUID, profile CustomerProfile) (*Customer, error) {
	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Active:              true,
	}
	if err := c.apply(profile); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update replaces the editable fields
func (c *Customer) Update(profile CustomerProfile) error {
	if err := c.apply(profile); err != nil {
		return err
	}
	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

func (c *Customer) apply(p CustomerProfile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	doc, err := valueobject.ParseDocument(p.Document)
	if err != nil {
		return shared.NewDomainError("INVALID_DOCUMENT", err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(p.Contact.Email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	addr, err := valueobject.NewAddress(p.Address)
	if err != nil {
		return shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	c.Name = name
	c.TradeName = strings.TrimSpace(p.TradeName)
	c.Document = doc.Number()
	c.Type = CustomerTypeIndividual
	if doc.IsCompany() {
		c.Type = CustomerTypeCompany
	}
	c.StateRegistration = strings.TrimSpace(p.StateRegistration)
	c.MunicipalRegistration = strings.TrimSpace(p.MunicipalRegistration)
	c.CustomerContact = CustomerContact{
		Email:  email,
		Phone:  valueobject.OnlyDigits(p.Contact.Phone),
		Mobile: valueobject.OnlyDigits(p.Contact.Mobile),
	}
	c.Address = addr
	c.Notes = strings.TrimSpace(p.Notes)
	return nil
}

// Activate allows new bookings for the customer
func (c *Customer) Activate() {
	if !c.Active {
		c.Active = true
		c.Touch()
	}
}

// Deactivate blocks new bookings for the customer
func (c *Customer) Deactivate() {
	if c.Active {
		c.Active = false
		c.Touch()
	}
}

// CanBook reports whether new bookings may be opened for the customer
func (c *Customer) CanBook() error {
	if !c.Active {
		return shared.NewDomainErrorf("CUSTOMER_INACTIVE", "Customer %s is inactive", c.Name)
	}
	return nil
}

// DisplayName prefers the trade name for companies
func (c *Customer) DisplayName() string {
	if c.Type == CustomerTypeCompany && c.TradeName != "" {
		return c.TradeName
	}
	return c.Name
}

// FormattedDocument returns the document with punctuation
func (c *Customer) FormattedDocument() string {
	doc, err := valueobject.ParseDocument(c.Document)
	if err != nil {
		return c.Document
	}
	return doc.Formatted()
}
