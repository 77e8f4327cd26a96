package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users, optionally tied to a listing.
type Message struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index"`
	SenderName  string     `gorm:"column:sender_name;not null"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index"`
	ListingID   *uuid.UUID `gorm:"column:listing_id;type:uuid"`
	Body        string     `gorm:"column:body;not null"`
	Read        bool       `gorm:"column:read;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
