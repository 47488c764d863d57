package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is the application data minted into a token.
type AccessTokenPayload struct {
	MerchantID uuid.UUID
	Username   string
	JTI        string
}

// AccessTokenClaims is the full claim set carried by issued tokens.
type AccessTokenClaims struct {
	MerchantID uuid.UUID `json:"merchant_id"`
	Username   string    `json:"username"`
	jwt.RegisteredClaims
}
