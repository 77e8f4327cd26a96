package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/users"
	pkgauth "github.com/mateovidal/tradewind-backend/pkg/auth"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
	"github.com/mateovidal/tradewind-backend/pkg/security"
)

const bearerTokenType = "bearer"

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo    *users.Repository
	JWTConfig   config.JWTConfig
	PasswordCfg config.PasswordConfig
	Now         func() time.Time
}

// Service exposes account registration and credential checks.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (SessionDTO, error)
	Login(ctx context.Context, input LoginInput) (SessionDTO, error)
	Me(ctx context.Context, userID uuid.UUID) (users.UserDTO, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (users.UserDTO, error)
}

type service struct {
	userRepo    *users.Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo:    params.UserRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordCfg,
		now:         now,
	}, nil
}

// Register creates an account and returns a fresh session.
func (s *service) Register(ctx context.Context, input RegisterInput) (SessionDTO, error) {
	email := normalizeEmail(input.Email)
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.mintSession(user)
}

// Login checks credentials and returns a session. Failures are reported with
// a single undifferentiated message so callers cannot probe for accounts.
func (s *service) Login(ctx context.Context, input LoginInput) (SessionDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.mintSession(user)
}

// Me returns the caller's public profile.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (users.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return users.FromModel(user), nil
}

// UpdateAvatar stores a new profile picture URL.
func (s *service) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (users.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	trimmed := strings.TrimSpace(avatarURL)
	user.AvatarURL = &trimmed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return users.FromModel(user), nil
}

func (s *service) mintSession(user *models.User) (SessionDTO, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return SessionDTO{
		AccessToken: token,
		TokenType:   bearerTokenType,
		User:        users.FromModel(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
