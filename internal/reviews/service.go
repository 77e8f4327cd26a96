package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/listings"
	"github.com/mateovidal/tradewind-backend/pkg/db"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// Actor identifies the reviewer.
type Actor struct {
	UserID   uuid.UUID
	FullName string
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	DB          *db.Client
	ReviewRepo  *Repository
	ListingRepo *listings.Repository
}

// Service exposes review submission and listing review queries.
type Service interface {
	Add(ctx context.Context, actor Actor, listingID uuid.UUID, input CreateReviewInput) (ReviewDTO, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]ReviewDTO, error)
}

type service struct {
	db          *db.Client
	reviewRepo  *Repository
	listingRepo *listings.Repository
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.ReviewRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	return &service{
		db:          params.DB,
		reviewRepo:  params.ReviewRepo,
		listingRepo: params.ListingRepo,
	}, nil
}

// Add stores a review and recomputes the listing's rating aggregate from
// every review on record.
func (s *service) Add(ctx context.Context, actor Actor, listingID uuid.UUID, input CreateReviewInput) (ReviewDTO, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	review := &models.Review{
		ListingID:    listingID,
		ReviewerID:   actor.UserID,
		ReviewerName: actor.FullName,
		Rating:       input.Rating,
		Comment:      strings.TrimSpace(input.Comment),
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.reviewRepo.CreateTx(ctx, tx, review); err != nil {
			return err
		}

		ratings, err := s.reviewRepo.RatingsForListingTx(ctx, tx, listingID)
		if err != nil {
			return err
		}

		avg, count := aggregate(ratings)
		return tx.WithContext(ctx).
			Model(&models.Listing{}).
			Where("id = ?", listingID).
			Updates(map[string]any{
				"rating_avg":   avg,
				"rating_count": count,
			}).
			Error
	})
	if err != nil {
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store review")
	}

	return FromModel(review), nil
}

// ListByListing returns every review on a listing, newest first.
func (s *service) ListByListing(ctx context.Context, listingID uuid.UUID) ([]ReviewDTO, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	rows, err := s.reviewRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	result := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		result = append(result, FromModel(&rows[i]))
	}
	return result, nil
}

// aggregate computes the mean rating rounded to one decimal place.
func aggregate(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := decimal.Zero
	for _, rating := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(rating)))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1)
	return mean.InexactFloat64(), len(ratings)
}
