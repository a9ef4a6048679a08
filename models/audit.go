package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records who did what to which entity. Writes are best-effort and
// never fail the primary operation.
type AuditLog struct {
	Id         string         `json:"id" gorm:"primaryKey"`
	UserID     string         `json:"user_id" gorm:"index"`
	Username   string         `json:"username"`
	Action     string         `json:"action" gorm:"not null"`
	EntityType string         `json:"entity_type" gorm:"index"`
	EntityID   string         `json:"entity_id"`
	OldValue   datatypes.JSON `json:"old_value" gorm:"type:jsonb"`
	NewValue   datatypes.JSON `json:"new_value" gorm:"type:jsonb"`
	IPAddress  string         `json:"ip_address"`
	CreatedAt  time.Time      `json:"timestamp" gorm:"index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.Id == "" {
		a.Id = uuid.NewString()
	}
	return
}
