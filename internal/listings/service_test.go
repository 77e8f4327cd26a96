package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL,
  listing_type TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  images TEXT,
  tags TEXT,
  rating_avg REAL NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newListingService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{ListingRepo: NewRepository(setupListingsTestDB(t))})
	require.NoError(t, err)
	return svc
}

func sellerActor() Actor {
	return Actor{UserID: uuid.New(), FullName: "Sample Seller", Role: enums.UserRoleSeller}
}

func sampleInput() CreateListingInput {
	return CreateListingInput{
		Title:       "Vintage road bike",
		Description: "Steel frame, recently serviced",
		Category:    "sports",
		ListingType: "product",
		PriceCents:  45000,
		Stock:       2,
		Images:      []string{"https://cdn.example.com/bike.jpg"},
		Tags:        []string{"bike", "vintage"},
	}
}

func TestCreateListing(t *testing.T) {
	ctx := context.Background()
	svc := newListingService(t)
	actor := sellerActor()

	dto, err := svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.Equal(t, actor.UserID, dto.SellerID)
	assert.Equal(t, "Sample Seller", dto.SellerName)
	assert.Equal(t, int64(45000), dto.PriceCents)
	assert.Equal(t, []string{"bike", "vintage"}, dto.Tags)

	loaded, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.Title, loaded.Title)
	assert.Equal(t, []string{"https://cdn.example.com/bike.jpg"}, loaded.Images)
}

func TestCreateListingBuyerForbidden(t *testing.T) {
	svc := newListingService(t)
	buyer := Actor{UserID: uuid.New(), FullName: "Just Browsing", Role: enums.UserRoleBuyer}

	_, err := svc.Create(context.Background(), buyer, sampleInput())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	svc := newListingService(t)
	actor := sellerActor()

	bike := sampleInput()
	_, err := svc.Create(ctx, actor, bike)
	require.NoError(t, err)

	guitar := CreateListingInput{
		Title:       "Acoustic guitar lessons",
		Description: "One hour sessions over video call",
		Category:    "music",
		ListingType: "service",
		PriceCents:  3000,
	}
	_, err = svc.Create(ctx, actor, guitar)
	require.NoError(t, err)

	byCategory, err := svc.List(ctx, ListFilter{Category: "music"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Acoustic guitar lessons", byCategory[0].Title)

	bySearch, err := svc.List(ctx, ListFilter{Search: "ROAD"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Vintage road bike", bySearch[0].Title)

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateListingPartial(t *testing.T) {
	ctx := context.Background()
	svc := newListingService(t)
	actor := sellerActor()

	dto, err := svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)

	newPrice := int64(42000)
	newStock := 5
	updated, err := svc.Update(ctx, actor, dto.ID, UpdateListingInput{
		PriceCents: &newPrice,
		Stock:      &newStock,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42000), updated.PriceCents)
	assert.Equal(t, 5, updated.Stock)
	// untouched fields survive
	assert.Equal(t, "Vintage road bike", updated.Title)
	assert.Equal(t, []string{"bike", "vintage"}, updated.Tags)
}

func TestUpdateListingOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newListingService(t)

	dto, err := svc.Create(ctx, sellerActor(), sampleInput())
	require.NoError(t, err)

	other := sellerActor()
	title := "Hijacked"
	_, err = svc.Update(ctx, other, dto.ID, UpdateListingInput{Title: &title})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestDeleteListing(t *testing.T) {
	ctx := context.Background()
	svc := newListingService(t)
	actor := sellerActor()

	dto, err := svc.Create(ctx, actor, sampleInput())
	require.NoError(t, err)

	require.Error(t, svc.Delete(ctx, sellerActor(), dto.ID))
	require.NoError(t, svc.Delete(ctx, actor, dto.ID))

	_, err = svc.Get(ctx, dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
