package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/api/validators"
	"github.com/smartgement/merchant-backend/internal/automation"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

type automationCommandRequest struct {
	Command string `json:"command" validate:"required"`
}

type automationExecuteRequest struct {
	Command   string `json:"command" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

type automationUndoRequest struct {
	OperationID *uuid.UUID `json:"operation_id,omitempty"`
}

// PreviewAutomation resolves a command against the catalog without mutating it.
func PreviewAutomation(svc automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload automationCommandRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Preview(r.Context(), merchantID, payload.Command)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preview)
	}
}

// ExecuteAutomation applies a command, honoring the confirmation gate.
func ExecuteAutomation(svc automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload automationExecuteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), merchantID, payload.Command, payload.Confirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UndoAutomation reverts the given operation, or the latest when unspecified.
func UndoAutomation(svc automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		payload := automationUndoRequest{}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.Undo(r.Context(), merchantID, payload.OperationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AutomationHistory lists the merchant's recent operations, newest first.
func AutomationHistory(svc automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		entries, err := svc.History(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}
