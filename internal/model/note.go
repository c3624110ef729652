package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a user-owned note. UserID is set at creation from the
// authenticated requester and never reassigned.
type Note struct {
	ID      uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title   string    `json:"title" gorm:"size:255;not null"`
	Content string    `json:"content" gorm:"type:text"`
	UserID  uuid.UUID `json:"user" gorm:"type:char(36);not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
