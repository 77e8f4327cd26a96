package auth

import (
	"github.com/mateovidal/tradewind-backend/internal/users"
)

// RegisterInput carries the account creation request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

// LoginInput carries the credential check request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAvatarInput carries the profile picture update.
type UpdateAvatarInput struct {
	AvatarURL string `json:"avatar_url" validate:"required,url,max=2048"`
}

// SessionDTO pairs a bearer token with the authenticated account.
type SessionDTO struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        users.UserDTO `json:"user"`
}
