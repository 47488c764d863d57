package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/smartgement/merchant-backend/pkg/auth"
	"github.com/smartgement/merchant-backend/pkg/config"
)

var authTestConfig = config.JWTConfig{
	Secret:            "middleware-test-secret",
	Issuer:            "smartgement",
	ExpirationMinutes: 60,
}

func mintTestToken(t *testing.T, merchantID uuid.UUID, username string) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(authTestConfig, time.Now().UTC(), pkgauth.AccessTokenPayload{
		MerchantID: merchantID,
		Username:   username,
	})
	require.NoError(t, err)
	return token
}

func TestAuthSeedsMerchantContext(t *testing.T) {
	merchantID := uuid.New()
	token := mintTestToken(t, merchantID, "warung-budi")

	var gotMerchantID uuid.UUID
	var gotUsername string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMerchantID = MerchantIDFromContext(r.Context())
		gotUsername = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Auth(authTestConfig, nil)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, merchantID, gotMerchantID)
	assert.Equal(t, "warung-budi", gotUsername)
}

func TestAuthAcceptsRawToken(t *testing.T) {
	merchantID := uuid.New()
	token := mintTestToken(t, merchantID, "warung-budi")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()

	Auth(authTestConfig, nil)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()

	Auth(authTestConfig, nil)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, "missing credentials", body.Error.Message)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	Auth(authTestConfig, nil)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsTokenFromOtherSecret(t *testing.T) {
	other := authTestConfig
	other.Secret = "other-secret"
	token, err := pkgauth.MintAccessToken(other, time.Now().UTC(), pkgauth.AccessTokenPayload{
		MerchantID: uuid.New(),
	})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Auth(authTestConfig, nil)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMerchantIDFromContextDefaultsToNil(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, uuid.Nil, MerchantIDFromContext(req.Context()))
	assert.Equal(t, "", UsernameFromContext(req.Context()))
}
