package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Loan struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	BookID string `gorm:"type:uuid;not null;index" json:"book_id"`
	Book   *Book  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"book,omitempty"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`

	CheckedOutAt time.Time  `gorm:"not null;index" json:"checked_out_at"`
	DueAt        time.Time  `gorm:"not null" json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at"`

	Status string `gorm:"size:20;not null;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Loan) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
