package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a buyer's rating and comment on a listing.
type Review struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ListingID    uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index"`
	ReviewerID   uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null"`
	ReviewerName string    `gorm:"column:reviewer_name;not null"`
	Rating       int       `gorm:"column:rating;not null"`
	Comment      string    `gorm:"column:comment;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
