package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
)

// CreateReviewInput carries a new review request.
type CreateReviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewDTO is the public view of a review.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	ListingID    uuid.UUID `json:"listing_id"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromModel maps a persistence row to its public DTO.
func FromModel(review *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:           review.ID,
		ListingID:    review.ListingID,
		ReviewerID:   review.ReviewerID,
		ReviewerName: review.ReviewerName,
		Rating:       review.Rating,
		Comment:      review.Comment,
		CreatedAt:    review.CreatedAt,
	}
}
