package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog rows are append-only. Nothing in the application updates or
// deletes them; only a full reset clears the table.
type AuditLog struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Action     string  `gorm:"size:50;not null;index" json:"action"`
	EntityType string  `gorm:"size:50;not null" json:"entity_type"`
	EntityID   *string `gorm:"size:64;index" json:"entity_id"`
	UserID     *string `gorm:"type:uuid;index" json:"user_id"`

	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
