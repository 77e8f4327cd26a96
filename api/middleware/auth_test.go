package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/mateovidal/tradewind-backend/pkg/auth"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

type stubUserLoader struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserLoader) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "middleware-secret", Issuer: "tradewind-test", ExpirationMinutes: 5}
}

func newAuthHandler(t *testing.T, loader *stubUserLoader) http.Handler {
	t.Helper()
	return Auth(authTestConfig(), loader, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Test-User", ident.UserID.String())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthHappyPath(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "seller@example.com",
		FullName: "Sample Seller",
		Role:     enums.UserRoleSeller,
	}
	loader := &stubUserLoader{users: map[uuid.UUID]*models.User{user.ID: user}}

	token, err := pkgauth.MintAccessToken(authTestConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newAuthHandler(t, loader).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.String(), rec.Header().Get("X-Test-User"))
}

func TestAuthMissingCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	newAuthHandler(t, &stubUserLoader{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing credentials")
}

func TestAuthExpiredToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleBuyer}
	loader := &stubUserLoader{users: map[uuid.UUID]*models.User{user.ID: user}}

	token, err := pkgauth.MintAccessToken(authTestConfig(), time.Now().Add(-time.Hour), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newAuthHandler(t, loader).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestAuthGarbageToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	newAuthHandler(t, &stubUserLoader{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuthUnknownUser(t *testing.T) {
	token, err := pkgauth.MintAccessToken(authTestConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleBuyer,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newAuthHandler(t, &stubUserLoader{users: map[uuid.UUID]*models.User{}}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
