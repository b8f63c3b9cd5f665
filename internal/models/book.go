package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Book struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Title         string  `gorm:"size:255;not null" json:"title"`
	Author        string  `gorm:"size:255;not null" json:"author"`
	ISBN          *string `gorm:"size:32" json:"isbn"`
	Category      *string `gorm:"size:100;index" json:"category"`
	Language      *string `gorm:"size:50" json:"language"`
	PublishedYear *int    `json:"published_year"`
	Description   *string `gorm:"type:text" json:"description"`
	CoverURL      *string `gorm:"size:512" json:"cover_url"`

	Status     string     `gorm:"size:20;not null;default:'AVAILABLE';index" json:"status"`
	ArchivedAt *time.Time `json:"archived_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
