package automation

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

// Failure is a structured, user-facing refusal. It travels inside result
// payloads instead of propagating as an error.
type Failure struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

// PreviewResult describes what a command would do without executing it.
type PreviewResult struct {
	Success              bool                   `json:"success"`
	OperationType        enums.AutomationAction `json:"operation_type,omitempty"`
	Description          string                 `json:"description,omitempty"`
	AffectedProducts     []catalog.ProductDTO   `json:"affected_products"`
	AffectedCount        int                    `json:"affected_count"`
	EstimatedImpact      string                 `json:"estimated_impact,omitempty"`
	RequiresConfirmation bool                   `json:"requires_confirmation"`
	Failure              *Failure               `json:"failure,omitempty"`
}

// ExecuteResult reports the outcome of running a command.
type ExecuteResult struct {
	Success            bool                   `json:"success"`
	OperationType      enums.AutomationAction `json:"operation_type,omitempty"`
	AffectedCount      int                    `json:"affected_count"`
	AffectedProductIDs []uuid.UUID            `json:"affected_product_ids"`
	Message            string                 `json:"message,omitempty"`
	CanUndo            bool                   `json:"can_undo"`
	OperationID        *uuid.UUID             `json:"operation_id,omitempty"`
	Preview            *PreviewResult         `json:"preview,omitempty"`
	Failure            *Failure               `json:"failure,omitempty"`
}

// UndoResult reports the outcome of reverting an operation.
type UndoResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message,omitempty"`
	RestoredCount int      `json:"restored_count"`
	Failure       *Failure `json:"failure,omitempty"`
}

// HistoryEntry is one past operation in the merchant's history listing.
type HistoryEntry struct {
	ID            uuid.UUID              `json:"id"`
	OperationType enums.AutomationAction `json:"operation_type"`
	Command       string                 `json:"command"`
	AffectedCount int                    `json:"affected_count"`
	ExecutedAt    time.Time              `json:"executed_at"`
	CanUndo       bool                   `json:"can_undo"`
}
