package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/enums"
)

// ChatMessage is one persisted exchange between a merchant and the assistant.
type ChatMessage struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	MerchantID uuid.UUID        `gorm:"column:merchant_id;type:uuid;not null;index"`
	Message    string           `gorm:"column:message;type:text;not null"`
	Response   string           `gorm:"column:response;type:text"`
	Intent     enums.ChatIntent `gorm:"column:intent"`
	Confidence float64          `gorm:"column:confidence;not null;default:0"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
