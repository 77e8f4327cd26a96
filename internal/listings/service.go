package listings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// Actor identifies the caller performing a listing operation.
type Actor struct {
	UserID   uuid.UUID
	FullName string
	Role     enums.UserRole
}

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	ListingRepo *Repository
}

// Service exposes catalog management for sellers and browsing for everyone.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateListingInput) (ListingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (ListingDTO, error)
	List(ctx context.Context, filter ListFilter) ([]ListingDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateListingInput) (ListingDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	listingRepo *Repository
}

// NewService builds a listing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{listingRepo: params.ListingRepo}, nil
}

// Create publishes a new listing. Only sellers may create listings.
func (s *service) Create(ctx context.Context, actor Actor, input CreateListingInput) (ListingDTO, error) {
	if actor.Role != enums.UserRoleSeller {
		return ListingDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can create listings")
	}

	listingType, err := enums.ParseListingType(input.ListingType)
	if err != nil {
		return ListingDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing type")
	}

	listing := &models.Listing{
		SellerID:    actor.UserID,
		SellerName:  actor.FullName,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		ListingType: listingType,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		Images:      pq.StringArray(input.Images),
		Tags:        pq.StringArray(input.Tags),
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return ListingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return FromModel(listing), nil
}

// Get returns a single listing.
func (s *service) Get(ctx context.Context, id uuid.UUID) (ListingDTO, error) {
	listing, err := s.loadListing(ctx, id)
	if err != nil {
		return ListingDTO{}, err
	}
	return FromModel(listing), nil
}

// List returns listings matching the filter.
func (s *service) List(ctx context.Context, filter ListFilter) ([]ListingDTO, error) {
	rows, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	result := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		result = append(result, FromModel(&rows[i]))
	}
	return result, nil
}

// Update applies the non-nil fields to a listing the actor owns.
func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateListingInput) (ListingDTO, error) {
	listing, err := s.loadListing(ctx, id)
	if err != nil {
		return ListingDTO{}, err
	}
	if listing.SellerID != actor.UserID {
		return ListingDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "not your listing")
	}

	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		fields["category"] = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		fields["price_cents"] = *input.PriceCents
	}
	if input.Stock != nil {
		fields["stock"] = *input.Stock
	}
	if input.Images != nil {
		fields["images"] = pq.StringArray(*input.Images)
	}
	if input.Tags != nil {
		fields["tags"] = pq.StringArray(*input.Tags)
	}

	if err := s.listingRepo.UpdateFields(ctx, id, fields); err != nil {
		return ListingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}

	updated, err := s.loadListing(ctx, id)
	if err != nil {
		return ListingDTO{}, err
	}
	return FromModel(updated), nil
}

// Delete removes a listing the actor owns.
func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	listing, err := s.loadListing(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not your listing")
	}
	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	return nil
}

func (s *service) loadListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}
