package controllers

import (
	"net/http"

	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/internal/risk"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

// AssessProduct scores one product and persists its risk factors.
func AssessProduct(svc risk.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}
		productID, ok := pathUUID(w, r, logg, "productID")
		if !ok {
			return
		}

		assessment, err := svc.AssessProduct(r.Context(), merchantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assessment)
	}
}

// RiskReport aggregates risk posture across the merchant's catalog.
func RiskReport(svc risk.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		report, err := svc.GenerateReport(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
