package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
)

// SendMessageInput carries a new direct message.
type SendMessageInput struct {
	RecipientID string  `json:"recipient_id" validate:"required,uuid4"`
	ListingID   *string `json:"listing_id" validate:"omitempty,uuid4"`
	Body        string  `json:"body" validate:"required,min=1,max=4000"`
}

// MessageDTO is the public view of a message.
type MessageDTO struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	SenderName  string     `json:"sender_name"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ListingID   *uuid.UUID `json:"listing_id,omitempty"`
	Body        string     `json:"body"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ThreadDTO is a derived conversation summary with one counterpart.
type ThreadDTO struct {
	CounterpartID     uuid.UUID  `json:"counterpart_id"`
	CounterpartName   string     `json:"counterpart_name"`
	CounterpartAvatar *string    `json:"counterpart_avatar,omitempty"`
	LastMessage       MessageDTO `json:"last_message"`
	UnreadCount       int        `json:"unread_count"`
}

// FromModel maps a persistence row to its public DTO.
func FromModel(message *models.Message) MessageDTO {
	return MessageDTO{
		ID:          message.ID,
		SenderID:    message.SenderID,
		SenderName:  message.SenderName,
		RecipientID: message.RecipientID,
		ListingID:   message.ListingID,
		Body:        message.Body,
		Read:        message.Read,
		CreatedAt:   message.CreatedAt,
	}
}
