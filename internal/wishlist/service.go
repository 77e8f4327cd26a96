package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/listings"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	ListingRepo  *listings.Repository
}

// Service exposes wishlist management.
type Service interface {
	Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]listings.ListingDTO, error)
}

type service struct {
	wishlistRepo *Repository
	listingRepo  *listings.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		listingRepo:  params.ListingRepo,
	}, nil
}

// Add ensures the listing exists and pins it. Returns false when the pin
// was already present.
func (s *service) Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if listingID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	added, err := s.wishlistRepo.AddItem(ctx, userID, listingID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return added, nil
}

// Remove drops the pin regardless of prior state.
func (s *service) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := s.wishlistRepo.RemoveItem(ctx, userID, listingID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

// List returns the pinned listings in full.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]listings.ListingDTO, error) {
	rows, err := s.wishlistRepo.ListListings(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	result := make([]listings.ListingDTO, 0, len(rows))
	for i := range rows {
		result = append(result, listings.FromModel(&rows[i]))
	}
	return result, nil
}
