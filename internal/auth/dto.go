package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// RegisterRequest contains the payload for onboarding a new merchant.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3"`
	Password     string `json:"password" validate:"required,min=8"`
	BusinessName string `json:"business_name"`
}

// LoginRequest contains merchant credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the public view of a merchant account.
type UserSummary struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	BusinessName string     `json:"business_name,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LoginResponse carries the access token and account view.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserSummary `json:"user"`
}

// FromModel converts the persistence model to the public view.
func FromModel(user *models.User) UserSummary {
	return UserSummary{
		ID:           user.ID,
		Username:     user.Username,
		BusinessName: user.BusinessName,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
	}
}
