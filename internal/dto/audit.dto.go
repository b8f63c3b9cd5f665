package dto

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEntryDTO struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	UserID     *string        `json:"user_id"`
	UserName   *string        `json:"user_name"`
	UserEmail  *string        `json:"user_email"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}
