package chat

import (
	"github.com/smartgement/merchant-backend/pkg/enums"
)

// HistoryTurn is one prior message supplied by the client for context.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the assistant's reply to one message.
type Response struct {
	Response         string           `json:"response"`
	Intent           enums.ChatIntent `json:"intent"`
	Confidence       float64          `json:"confidence"`
	SuggestedActions []string         `json:"suggested_actions"`
}

// IntentResult is the classification of one message.
type IntentResult struct {
	Intent     enums.ChatIntent `json:"intent"`
	Confidence float64          `json:"confidence"`
}
