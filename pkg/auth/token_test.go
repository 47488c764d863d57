package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgement/merchant-backend/pkg/config"
)

var tokenTestConfig = config.JWTConfig{
	Secret:            "token-test-secret",
	Issuer:            "smartgement",
	ExpirationMinutes: 60,
}

func TestMintAndParseAccessToken(t *testing.T) {
	merchantID := uuid.New()
	now := time.Now().UTC()

	token, err := MintAccessToken(tokenTestConfig, now, AccessTokenPayload{
		MerchantID: merchantID,
		Username:   "warung-budi",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(tokenTestConfig, token)
	require.NoError(t, err)
	assert.Equal(t, merchantID, claims.MerchantID)
	assert.Equal(t, "warung-budi", claims.Username)
	assert.Equal(t, "smartgement", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now().UTC()
	payload := AccessTokenPayload{MerchantID: uuid.New(), Username: "x"}

	_, err := MintAccessToken(config.JWTConfig{Issuer: "i", ExpirationMinutes: 1}, now, payload)
	require.Error(t, err)

	_, err = MintAccessToken(config.JWTConfig{Secret: "s", ExpirationMinutes: 1}, now, payload)
	require.Error(t, err)

	_, err = MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "i"}, now, payload)
	require.Error(t, err)

	_, err = MintAccessToken(tokenTestConfig, now, AccessTokenPayload{Username: "x"})
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(tokenTestConfig, time.Now().UTC(), AccessTokenPayload{
		MerchantID: uuid.New(),
	})
	require.NoError(t, err)

	other := tokenTestConfig
	other.Secret = "different-secret"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	issued := time.Now().UTC().Add(-2 * time.Hour)
	token, err := MintAccessToken(tokenTestConfig, issued, AccessTokenPayload{
		MerchantID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(tokenTestConfig, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	minted := tokenTestConfig
	minted.Issuer = "someone-else"
	token, err := MintAccessToken(minted, time.Now().UTC(), AccessTokenPayload{
		MerchantID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(tokenTestConfig, token)
	require.Error(t, err)
}
