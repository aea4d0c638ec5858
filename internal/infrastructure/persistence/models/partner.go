package models

import (
	"github.com/locaflow/backend/internal/domain/partner"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	TenantAggregateModel
	Type                  partner.CustomerType `gorm:"type:varchar(20);not null"`
	Name                  string               `gorm:"type:varchar(200);not null"`
	TradeName             string               `gorm:"type:varchar(200)"`
	Document              string               `gorm:"type:varchar(14);not null;index"`
	StateRegistration     string               `gorm:"type:varchar(30)"`
	MunicipalRegistration string               `gorm:"type:varchar(30)"`
	Email                 string               `gorm:"type:varchar(200)"`
	Phone                 string               `gorm:"type:varchar(30)"`
	Mobile                string               `gorm:"type:varchar(30)"`
	Address               AddressColumns       `gorm:"embedded"`
	Notes                 string               `gorm:"type:text"`
	Active                bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot:   m.ToDomainTenantAggregateRoot(),
		Type:                  m.Type,
		Name:                  m.Name,
		TradeName:             m.TradeName,
		Document:              m.Document,
		StateRegistration:     m.StateRegistration,
		MunicipalRegistration: m.MunicipalRegistration,
		CustomerContact: partner.CustomerContact{
			Email:  m.Email,
			Phone:  m.Phone,
			Mobile: m.Mobile,
		},
		Address: valueobject.Address(m.Address),
		Notes:   m.Notes,
		Active:  m.Active,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Type:                  c.Type,
		Name:                  c.Name,
		TradeName:             c.TradeName,
		Document:              c.Document,
		StateRegistration:     c.StateRegistration,
		MunicipalRegistration: c.MunicipalRegistration,
		Email:                 c.Email,
		Phone:                 c.Phone,
		Mobile:                c.Mobile,
		Address:               AddressColumns(c.Address),
		Notes:                 c.Notes,
		Active:                c.Active,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// LeadModel is a platform-level sales lead. It has no tenant column
type LeadModel struct {
	BaseModel
	Name    string             `gorm:"type:varchar(200);not null"`
	Email   string             `gorm:"type:varchar(200);not null;index"`
	Phone   string             `gorm:"type:varchar(30)"`
	Company string             `gorm:"type:varchar(200)"`
	Message string             `gorm:"type:text"`
	Source  string             `gorm:"type:varchar(50);not null;default:'website'"`
	Status  partner.LeadStatus `gorm:"type:varchar(20);not null;default:'NEW';index"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead
func (m *LeadModel) ToDomain() *partner.Lead {
	return &partner.Lead{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Company:    m.Company,
		Message:    m.Message,
		Source:     m.Source,
		Status:     m.Status,
	}
}

// LeadModelFromDomain creates a persistence model from a domain Lead
func LeadModelFromDomain(l *partner.Lead) *LeadModel {
	m := &LeadModel{
		Name:    l.Name,
		Email:   l.Email,
		Phone:   l.Phone,
		Company: l.Company,
		Message: l.Message,
		Source:  l.Source,
		Status:  l.Status,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
