package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/listings"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
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
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  listing_id TEXT NOT NULL,
  listing_title TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  session_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newOrderService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrderRepo:   NewRepository(conn),
		ListingRepo: listings.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc
}

func seedOrderListing(t *testing.T, conn *gorm.DB, priceCents int64, stock int) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		SellerID:    uuid.New(),
		SellerName:  "Seller",
		Title:       "Mechanical keyboard",
		Description: "Tenkeyless, browns",
		Category:    "electronics",
		ListingType: enums.ListingTypeProduct,
		PriceCents:  priceCents,
		Stock:       stock,
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}

func TestCreateOrderFreezesTotal(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	listing := seedOrderListing(t, conn, 8000, 5)

	buyer := Actor{UserID: uuid.New(), FullName: "Keen Buyer", Role: enums.UserRoleBuyer}
	order, err := svc.Create(ctx, buyer, listing.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(24000), order.TotalCents)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, listing.SellerID, order.SellerID)
	assert.Equal(t, "Mechanical keyboard", order.ListingTitle)

	// stock must not move at order time
	var fresh models.Listing
	require.NoError(t, conn.First(&fresh, "id = ?", listing.ID).Error)
	assert.Equal(t, 5, fresh.Stock)

	// a later price change must not affect the frozen total
	require.NoError(t, conn.Model(&models.Listing{}).Where("id = ?", listing.ID).Update("price_cents", 9999).Error)
	reloaded, err := svc.Get(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(24000), reloaded.TotalCents)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	listing := seedOrderListing(t, conn, 1000, 2)

	buyer := Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}
	_, err := svc.Create(ctx, buyer, listing.ID, 3)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "insufficient stock", typed.Message())
}

func TestCreateOrderServiceListingSkipsStockCheck(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	listing := &models.Listing{
		SellerID:    uuid.New(),
		SellerName:  "Seller",
		Title:       "Piano lessons",
		Description: "One hour, beginner friendly",
		Category:    "education",
		ListingType: enums.ListingTypeService,
		PriceCents:  4500,
	}
	require.NoError(t, conn.Create(listing).Error)

	buyer := Actor{UserID: uuid.New(), FullName: "Keen Buyer", Role: enums.UserRoleBuyer}
	order, err := svc.Create(ctx, buyer, listing.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(13500), order.TotalCents)
}

func TestCreateOrderUnknownListing(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)

	_, err := svc.Create(context.Background(), Actor{UserID: uuid.New()}, uuid.New(), 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateOrderNonPositiveQuantity(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	listing := seedOrderListing(t, conn, 1000, 2)

	for _, qty := range []int{0, -1} {
		_, err := svc.Create(context.Background(), Actor{UserID: uuid.New()}, listing.ID, qty)
		require.Error(t, err)
	}
}

func TestListByRole(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	listing := seedOrderListing(t, conn, 1000, 10)

	buyer := Actor{UserID: uuid.New(), FullName: "Buyer", Role: enums.UserRoleBuyer}
	_, err := svc.Create(ctx, buyer, listing.ID, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, buyer, listing.ID, 2)
	require.NoError(t, err)

	otherBuyer := Actor{UserID: uuid.New(), FullName: "Other", Role: enums.UserRoleBuyer}
	_, err = svc.Create(ctx, otherBuyer, listing.ID, 1)
	require.NoError(t, err)

	mine, err := svc.List(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	seller := Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller}
	sold, err := svc.List(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, sold, 3)
}

func TestGetOrderAccessControl(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	svc := newOrderService(t, conn)
	listing := seedOrderListing(t, conn, 1000, 10)

	buyer := Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}
	order, err := svc.Create(ctx, buyer, listing.ID, 1)
	require.NoError(t, err)

	_, err = svc.Get(ctx, Actor{UserID: uuid.New()}, order.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	_, err = svc.Get(ctx, Actor{UserID: listing.SellerID}, order.ID)
	require.NoError(t, err)
}
