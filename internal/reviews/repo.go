package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
)

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a review inside the supplied transaction.
func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	return tx.WithContext(ctx).Create(review).Error
}

// RatingsForListingTx returns every rating ever left on a listing.
func (r *Repository) RatingsForListingTx(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) ([]int, error) {
	var ratings []int
	err := tx.WithContext(ctx).
		Model(&models.Review{}).
		Where("listing_id = ?", listingID).
		Pluck("rating", &ratings).
		Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListByListing returns reviews for a listing, newest first.
func (r *Repository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
