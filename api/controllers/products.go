package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/api/middleware"
	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/api/validators"
	"github.com/smartgement/merchant-backend/internal/catalog"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

type createProductRequest struct {
	Name           string     `json:"name" validate:"required"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Ingredients    string     `json:"ingredients"`
	Stock          int        `json:"stock" validate:"omitempty,min=0"`
	Price          float64    `json:"price" validate:"required,min=0"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

type updateProductRequest struct {
	Name           *string    `json:"name,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Ingredients    *string    `json:"ingredients,omitempty"`
	Stock          *int       `json:"stock,omitempty" validate:"omitempty,min=0"`
	Price          *float64   `json:"price,omitempty" validate:"omitempty,min=0"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

// CreateProduct handles catalog entry creation for the authenticated merchant.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), merchantID, catalog.CreateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			Ingredients:    payload.Ingredients,
			Stock:          payload.Stock,
			Price:          payload.Price,
			ExpirationDate: payload.ExpirationDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ListProducts returns the merchant's catalog, newest first.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		products, err := svc.ListProducts(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct returns one product owned by the merchant.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		product, err := svc.GetProduct(r.Context(), merchantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// UpdateProduct applies a partial mutation to one product.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), merchantID, productID, catalog.UpdateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			Ingredients:    payload.Ingredients,
			Stock:          payload.Stock,
			Price:          payload.Price,
			ExpirationDate: payload.ExpirationDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes one product owned by the merchant.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		if err := svc.DeleteProduct(r.Context(), merchantID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func requireMerchant(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	merchantID := middleware.MerchantIDFromContext(r.Context())
	if merchantID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
		return uuid.Nil, false
	}
	return merchantID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
