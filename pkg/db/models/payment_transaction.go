package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
	"github.com/mateovidal/tradewind-backend/pkg/types"
)

// PaymentTransaction tracks a Stripe checkout session from creation until
// it settles. The session ID is unique so poll and webhook paths converge
// on the same row.
type PaymentTransaction struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SessionID     string              `gorm:"column:session_id;not null;uniqueIndex"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	AmountCents   int64               `gorm:"column:amount_cents;not null"`
	Currency      string              `gorm:"column:currency;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null"`
	Metadata      types.JSONMap       `gorm:"column:metadata;serializer:json"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PaymentTransaction) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
