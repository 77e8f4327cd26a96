package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// Order records a purchase intent. The total is frozen at creation time
// and stock is only decremented once payment settles.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID       uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	BuyerName     string              `gorm:"column:buyer_name;not null"`
	SellerID      uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index"`
	ListingID     uuid.UUID           `gorm:"column:listing_id;type:uuid;not null"`
	ListingTitle  string              `gorm:"column:listing_title;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	TotalCents    int64               `gorm:"column:total_cents;not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null"`
	SessionID     *string             `gorm:"column:session_id"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
