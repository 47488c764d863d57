package controllers

import (
	"net/http"

	"github.com/smartgement/merchant-backend/api/responses"
	"github.com/smartgement/merchant-backend/api/validators"
	"github.com/smartgement/merchant-backend/internal/chat"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

type chatRequest struct {
	Message             string             `json:"message" validate:"required"`
	ConversationHistory []chat.HistoryTurn `json:"conversation_history,omitempty"`
}

// Chat routes one assistant message and returns the reply.
func Chat(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID, ok := requireMerchant(w, r, logg)
		if !ok {
			return
		}

		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.ProcessMessage(r.Context(), merchantID, payload.Message, payload.ConversationHistory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reply)
	}
}
