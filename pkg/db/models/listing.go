package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// Listing represents a seller's product or service offer.
type Listing struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerName  string            `gorm:"column:seller_name;not null"`
	Title       string            `gorm:"column:title;not null"`
	Description string            `gorm:"column:description;not null"`
	Category    string            `gorm:"column:category;not null;index"`
	ListingType enums.ListingType `gorm:"column:listing_type;not null"`
	PriceCents  int64             `gorm:"column:price_cents;not null"`
	Stock       int               `gorm:"column:stock;not null;default:0"`
	Images      pq.StringArray    `gorm:"column:images;type:text[]"`
	Tags        pq.StringArray    `gorm:"column:tags;type:text[]"`
	// RatingAvg holds the mean review rating rounded to one decimal place.
	RatingAvg   float64   `gorm:"column:rating_avg;type:numeric(3,1);not null;default:0"`
	RatingCount int       `gorm:"column:rating_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Listing) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
