package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/listings"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// Actor identifies the caller performing an order operation.
type Actor struct {
	UserID   uuid.UUID
	FullName string
	Role     enums.UserRole
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	OrderRepo   *Repository
	ListingRepo *listings.Repository
}

// Service exposes order creation and history.
type Service interface {
	Create(ctx context.Context, buyer Actor, listingID uuid.UUID, quantity int) (OrderDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (OrderDTO, error)
	List(ctx context.Context, actor Actor) ([]OrderDTO, error)
}

type service struct {
	orderRepo   *Repository
	listingRepo *listings.Repository
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{
		orderRepo:   params.OrderRepo,
		listingRepo: params.ListingRepo,
	}, nil
}

// Create places an order against available stock. The total is frozen at
// the listing's current price; stock itself is not decremented until the
// payment settles.
func (s *service) Create(ctx context.Context, buyer Actor, listingID uuid.UUID, quantity int) (OrderDTO, error) {
	if quantity <= 0 {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	// services have no inventory to run out of
	if listing.ListingType == enums.ListingTypeProduct && listing.Stock < quantity {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}

	order := &models.Order{
		BuyerID:       buyer.UserID,
		BuyerName:     buyer.FullName,
		SellerID:      listing.SellerID,
		ListingID:     listing.ID,
		ListingTitle:  listing.Title,
		Quantity:      quantity,
		TotalCents:    listing.PriceCents * int64(quantity),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return FromModel(order), nil
}

// Get loads a single order the actor participates in.
func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != actor.UserID && order.SellerID != actor.UserID {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return FromModel(order), nil
}

// List returns the actor's order history. Buyers see their purchases,
// sellers see orders on their listings.
func (s *service) List(ctx context.Context, actor Actor) ([]OrderDTO, error) {
	var (
		rows []models.Order
		err  error
	)
	if actor.Role == enums.UserRoleSeller {
		rows, err = s.orderRepo.ListBySeller(ctx, actor.UserID)
	} else {
		rows, err = s.orderRepo.ListByBuyer(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		result = append(result, FromModel(&rows[i]))
	}
	return result, nil
}
