package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// OrderDTO is the public view of an order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	BuyerName     string              `json:"buyer_name"`
	SellerID      uuid.UUID           `json:"seller_id"`
	ListingID     uuid.UUID           `json:"listing_id"`
	ListingTitle  string              `json:"listing_title"`
	Quantity      int                 `json:"quantity"`
	TotalCents    int64               `json:"total_cents"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	SessionID     *string             `json:"session_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FromModel maps a persistence row to its public DTO.
func FromModel(order *models.Order) OrderDTO {
	return OrderDTO{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		BuyerName:     order.BuyerName,
		SellerID:      order.SellerID,
		ListingID:     order.ListingID,
		ListingTitle:  order.ListingTitle,
		Quantity:      order.Quantity,
		TotalCents:    order.TotalCents,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		SessionID:     order.SessionID,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
