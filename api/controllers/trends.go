package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/api/validators"
	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

type recordSaleRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
	Date      *time.Time `json:"date,omitempty"`
}

// RecordSale registers one sale event against a product.
func RecordSale(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload recordSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RecordSale(r.Context(), merchantID, trends.RecordSaleInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Date:      payload.Date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// AnalyzeTrend returns the sales trend for one product, defaulting to 30 days.
func AnalyzeTrend(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		days := 0
		if raw := r.URL.Query().Get("days"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				days = parsed
			}
		}

		analysis, err := svc.AnalyzeTrend(r.Context(), merchantID, productID, days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, analysis)
	}
}

// PredictDemand returns the 7/30-day demand forecast for one product.
func PredictDemand(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		prediction, err := svc.PredictDemand(r.Context(), merchantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prediction)
	}
}

// RecommendOrder returns the restock recommendation for one product.
func RecommendOrder(svc trends.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		recommendation, err := svc.RecommendOrder(r.Context(), merchantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recommendation)
	}
}
