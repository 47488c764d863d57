package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/smartgement/merchant-backend/pkg/db/types"
	"github.com/smartgement/merchant-backend/pkg/enums"
)

// AutomationHistory records one executed bulk operation, including the
// pre-mutation state needed to undo it.
type AutomationHistory struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	MerchantID         uuid.UUID              `gorm:"column:merchant_id;type:uuid;not null;index"`
	ActionType         enums.AutomationAction `gorm:"column:action_type;not null"`
	Command            string                 `gorm:"column:command;type:text"`
	AffectedProductIDs dbtypes.UUIDList       `gorm:"column:affected_product_ids;type:text;not null;default:'[]'"`
	PreviousState      dbtypes.JSONMap        `gorm:"column:previous_state;type:text;not null;default:'{}'"`
	ExecutedAt         time.Time              `gorm:"column:executed_at;autoCreateTime"`
	ExecutedBy         string                 `gorm:"column:executed_by;not null;default:'assistant'"`
}

// ProductSnapshot is the per-product slice of PreviousState.
type ProductSnapshot struct {
	Stock       int     `json:"stock"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func (h *AutomationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// CanUndo reports whether the recorded operation is reversible.
func (h *AutomationHistory) CanUndo() bool {
	return h.ActionType != enums.AutomationActionDelete
}
