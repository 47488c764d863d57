package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

type createProductBody struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"min=0"`
	Stock int     `json:"stock" validate:"min=0"`
	Unit  string  `json:"unit" validate:"omitempty,oneof=pcs kg liter"`
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var body createProductBody
	err := DecodeJSONBody(jsonRequest(`{"name":"Roti Tawar","price":15000,"stock":50,"unit":"pcs"}`), &body)
	require.NoError(t, err)
	assert.Equal(t, "Roti Tawar", body.Name)
	assert.Equal(t, float64(15000), body.Price)
	assert.Equal(t, 50, body.Stock)
}

func TestDecodeJSONBodyRejectsUnknownField(t *testing.T) {
	var body createProductBody
	err := DecodeJSONBody(jsonRequest(`{"name":"Roti","price":1,"bogus":true}`), &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Equal(t, "invalid request body", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	var body createProductBody
	err := DecodeJSONBody(jsonRequest(`{"name":`), &body)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "invalid request body", appErr.Message())

	details, ok := appErr.Details().(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, details["error"])
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	var body createProductBody
	err := DecodeJSONBody(jsonRequest(`{"price":-5,"stock":-1,"unit":"box"}`), &body)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "validation failed", appErr.Message())

	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be at least 0", details["price"])
	assert.Equal(t, "must be at least 0", details["stock"])
	assert.Equal(t, "must be one of pcs kg liter", details["unit"])
}

func TestDecodeJSONBodyUsesJSONTagNames(t *testing.T) {
	var body struct {
		BusinessName string `json:"business_name" validate:"required"`
	}
	err := DecodeJSONBody(jsonRequest(`{}`), &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	_, named := details["business_name"]
	assert.True(t, named)
}
