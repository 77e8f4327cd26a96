package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || listingID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}

	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (id, user_id, listing_id, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP) ON CONFLICT (user_id, listing_id) DO NOTHING`,
			uuid.New(), userID, listingID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveItem deletes the pin if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListListings returns the full listings a user has pinned, newest pin first.
func (r *Repository) ListListings(ctx context.Context, userID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.*").
		Joins("JOIN wishlist_items wi ON wi.listing_id = listings.id").
		Where("wi.user_id = ?", userID).
		Order("wi.created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
