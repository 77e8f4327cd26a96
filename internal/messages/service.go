package messages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/users"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// Actor identifies the caller of a messaging operation.
type Actor struct {
	UserID   uuid.UUID
	FullName string
}

// ServiceParams groups dependencies for the messaging service.
type ServiceParams struct {
	MessageRepo *Repository
	UserRepo    *users.Repository
}

// Service exposes buyer-seller messaging.
type Service interface {
	Send(ctx context.Context, actor Actor, input SendMessageInput) (MessageDTO, error)
	Threads(ctx context.Context, actor Actor) ([]ThreadDTO, error)
	Conversation(ctx context.Context, actor Actor, otherUserID uuid.UUID) ([]MessageDTO, error)
}

type service struct {
	messageRepo *Repository
	userRepo    *users.Repository
}

// NewService builds a messaging service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.MessageRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{
		messageRepo: params.MessageRepo,
		userRepo:    params.UserRepo,
	}, nil
}

// Send appends a message addressed to the recipient. The recipient is not
// looked up, so messages to unknown ids land in an empty mailbox.
func (s *service) Send(ctx context.Context, actor Actor, input SendMessageInput) (MessageDTO, error) {
	recipientID, err := uuid.Parse(input.RecipientID)
	if err != nil {
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "recipient id must be a UUID")
	}

	message := &models.Message{
		SenderID:    actor.UserID,
		SenderName:  actor.FullName,
		RecipientID: recipientID,
		Body:        strings.TrimSpace(input.Body),
	}
	if input.ListingID != nil {
		listingID, err := uuid.Parse(*input.ListingID)
		if err != nil {
			return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "listing id must be a UUID")
		}
		message.ListingID = &listingID
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return MessageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}
	return FromModel(message), nil
}

// Threads groups the caller's messages by counterpart. Each thread carries
// the latest message and the count of unread incoming messages, sorted most
// recent first.
func (s *service) Threads(ctx context.Context, actor Actor) ([]ThreadDTO, error) {
	rows, err := s.messageRepo.ListInvolving(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	// rows arrive newest first, so the first message per counterpart is
	// the thread head.
	order := make([]uuid.UUID, 0)
	threads := map[uuid.UUID]*ThreadDTO{}
	for i := range rows {
		message := &rows[i]
		counterpartID := message.SenderID
		if counterpartID == actor.UserID {
			counterpartID = message.RecipientID
		}

		thread, seen := threads[counterpartID]
		if !seen {
			thread = &ThreadDTO{
				CounterpartID: counterpartID,
				LastMessage:   FromModel(message),
			}
			threads[counterpartID] = thread
			order = append(order, counterpartID)
		}
		if message.SenderID == counterpartID {
			thread.CounterpartName = message.SenderName
			if !message.Read {
				thread.UnreadCount++
			}
		}
	}

	result := make([]ThreadDTO, 0, len(order))
	for _, id := range order {
		thread := threads[id]
		if user, err := s.userRepo.FindByID(ctx, id); err == nil {
			if thread.CounterpartName == "" {
				thread.CounterpartName = user.FullName
			}
			thread.CounterpartAvatar = user.AvatarURL
		}
		result = append(result, *thread)
	}
	return result, nil
}

// Conversation returns the full exchange with another user, oldest first,
// and marks their messages to the caller as read.
func (s *service) Conversation(ctx context.Context, actor Actor, otherUserID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.userRepo.FindByID(ctx, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	rows, err := s.messageRepo.ListBetween(ctx, actor.UserID, otherUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversation")
	}

	if err := s.messageRepo.MarkRead(ctx, actor.UserID, otherUserID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}

	result := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		// reflect the read-marking side effect in the response
		if dto.RecipientID == actor.UserID {
			dto.Read = true
		}
		result = append(result, dto)
	}
	return result, nil
}
