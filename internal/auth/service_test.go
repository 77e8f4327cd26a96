package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/users"
	pkgauth "github.com/mateovidal/tradewind-backend/pkg/auth"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  avatar_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestService(t *testing.T) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		UserRepo: users.NewRepository(setupAuthTestDB(t)),
		JWTConfig: config.JWTConfig{
			Secret:            "auth-service-test",
			Issuer:            "tradewind-test",
			ExpirationMinutes: 60,
		},
		PasswordCfg: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     8,
			ArgonKeyLen:      16,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Register(ctx, RegisterInput{
		Email:    "Buyer@Example.com",
		Password: "hunter22",
		FullName: "Avery Buyer",
		Role:     "buyer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "bearer", session.TokenType)
	assert.Equal(t, "buyer@example.com", session.User.Email)
	assert.NotEqual(t, uuid.Nil, session.User.ID)

	login, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	input := RegisterInput{
		Email:    "dup@example.com",
		Password: "password1",
		FullName: "First Caller",
		Role:     "seller",
	}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "email already registered", typed.Message())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "known@example.com",
		Password: "rightpassword",
		FullName: "Known User",
		Role:     "buyer",
	})
	require.NoError(t, err)

	// Unknown account and wrong password must be indistinguishable.
	for _, input := range []LoginInput{
		{Email: "unknown@example.com", Password: "whatever1"},
		{Email: "known@example.com", Password: "wrongpassword"},
	} {
		_, err := svc.Login(ctx, input)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, "invalid credentials", typed.Message())
	}
}

func TestRegisterInvalidRole(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "role@example.com",
		Password: "password1",
		FullName: "Role Tester",
		Role:     "admin",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSessionTokenRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Register(ctx, RegisterInput{
		Email:    "claims@example.com",
		Password: "password1",
		FullName: "Claims Tester",
		Role:     "seller",
	})
	require.NoError(t, err)

	cfg := config.JWTConfig{
		Secret:            "auth-service-test",
		Issuer:            "tradewind-test",
		ExpirationMinutes: 60,
	}
	claims, err := pkgauth.ParseAccessToken(cfg, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "claims@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestMeAndUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	session, err := svc.Register(ctx, RegisterInput{
		Email:    "me@example.com",
		Password: "password1",
		FullName: "Profile Owner",
		Role:     "buyer",
	})
	require.NoError(t, err)

	me, err := svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Profile Owner", me.FullName)
	assert.Nil(t, me.AvatarURL)

	updated, err := svc.UpdateAvatar(ctx, session.User.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *updated.AvatarURL)

	_, err = svc.Me(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
