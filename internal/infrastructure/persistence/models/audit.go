package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/audit"
)

// ActivityLogModel is an append-only activity row
type ActivityLogModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserID      *uuid.UUID     `gorm:"type:uuid;index"`
	UserName    string         `gorm:"type:varchar(200)"`
	Action      audit.Action   `gorm:"type:varchar(20);not null;index"`
	EntityType  string         `gorm:"type:varchar(50);index"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;index"`
	Description string         `gorm:"type:varchar(500)"`
	Metadata    map[string]any `gorm:"type:text;serializer:json"`
	IPAddress   string         `gorm:"column:ip_address;type:varchar(45)"`
	UserAgent   string         `gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain entry
func (m *ActivityLogModel) ToDomain() *audit.ActivityLog {
	return &audit.ActivityLog{
		ID:          m.ID,
		TenantID:    m.TenantID,
		UserID:      m.UserID,
		UserName:    m.UserName,
		Action:      m.Action,
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		Description: m.Description,
		Metadata:    m.Metadata,
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		CreatedAt:   m.CreatedAt,
	}
}

// ActivityLogModelFromDomain creates a persistence model from a domain entry
func ActivityLogModelFromDomain(l *audit.ActivityLog) *ActivityLogModel {
	return &ActivityLogModel{
		ID:          l.ID,
		TenantID:    l.TenantID,
		UserID:      l.UserID,
		UserName:    l.UserName,
		Action:      l.Action,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Description: l.Description,
		Metadata:    l.Metadata,
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
		CreatedAt:   l.CreatedAt,
	}
}
