package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/smartgement/merchant-backend/pkg/auth"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "auth-service-test-secret",
	Issuer:            "smartgement",
	ExpirationMinutes: 60,
}

// Small argon parameters keep the hashing fast in tests.
var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:auth_service_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func buildAuthService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(conn),
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPasswordConfig,
	})
	require.NoError(t, err)
	return svc
}

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, testUsernameCounter())
}

var usernameSeq int

func testUsernameCounter() int {
	usernameSeq++
	return usernameSeq
}

func TestRegisterAndLogin(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)
	username := uniqueUsername("warung")

	summary, err := svc.Register(context.Background(), RegisterRequest{
		Username:     "  " + username + "  ",
		Password:     "rahasia-123",
		BusinessName: " Warung Bu Siti ",
	})
	require.NoError(t, err)
	assert.Equal(t, username, summary.Username)
	assert.Equal(t, "Warung Bu Siti", summary.BusinessName)
	assert.Nil(t, summary.LastLoginAt)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: username,
		Password: "rahasia-123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, summary.ID, login.User.ID)
	require.NotNil(t, login.User.LastLoginAt)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, claims.MerchantID)
	assert.Equal(t, username, claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)
	username := uniqueUsername("toko")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Password: "rahasia-123",
	})
	require.NoError(t, err)

	// Same name with different casing collides too.
	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: strings.ToUpper(username),
		Password: "rahasia-456",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegisterShortPassword(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: uniqueUsername("kios"),
		Password: "pendek",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestLoginWrongPassword(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)
	username := uniqueUsername("lapak")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Password: "rahasia-123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{
		Username: username,
		Password: "salah-total",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, invalidCredentialsMessage, typed.Message())
}

func TestLoginUnknownUser(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "tidak-terdaftar",
		Password: "rahasia-123",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginNormalizesUsername(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := buildAuthService(t, conn)
	username := uniqueUsername("gerai")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Password: "rahasia-123",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: "  " + username + " ",
		Password: "rahasia-123",
	})
	require.NoError(t, err)
	assert.Equal(t, username, login.User.Username)
}
