package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// CreateListingInput carries a new listing request.
type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"required,min=2,max=64"`
	ListingType string   `json:"listing_type" validate:"required,oneof=product service"`
	PriceCents  int64    `json:"price_cents" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=40"`
}

// UpdateListingInput carries a partial update. Nil fields are left untouched.
type UpdateListingInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Category    *string   `json:"category" validate:"omitempty,min=2,max=64"`
	PriceCents  *int64    `json:"price_cents" validate:"omitempty,gt=0"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images" validate:"omitempty,max=10,dive,url"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
}

// ListFilter narrows the catalog query.
type ListFilter struct {
	Category string
	Search   string
	SellerID uuid.UUID
	Limit    int
}

// ListingDTO is the public view of a listing.
type ListingDTO struct {
	ID          uuid.UUID         `json:"id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	SellerName  string            `json:"seller_name"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	ListingType enums.ListingType `json:"listing_type"`
	PriceCents  int64             `json:"price_cents"`
	Stock       int               `json:"stock"`
	Images      []string          `json:"images"`
	Tags        []string          `json:"tags"`
	RatingAvg   float64           `json:"rating_avg"`
	RatingCount int               `json:"rating_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FromModel maps a persistence row to its public DTO.
func FromModel(listing *models.Listing) ListingDTO {
	images := []string(listing.Images)
	if images == nil {
		images = []string{}
	}
	tags := []string(listing.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ListingDTO{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		SellerName:  listing.SellerName,
		Title:       listing.Title,
		Description: listing.Description,
		Category:    listing.Category,
		ListingType: listing.ListingType,
		PriceCents:  listing.PriceCents,
		Stock:       listing.Stock,
		Images:      images,
		Tags:        tags,
		RatingAvg:   listing.RatingAvg,
		RatingCount: listing.RatingCount,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}
