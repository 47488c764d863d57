package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/enums"
)

// RiskAssessment is one detected risk factor for a product. Assessments are
// replaced wholesale on every scoring run, never updated in place.
type RiskAssessment struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	RiskType       enums.RiskType  `gorm:"column:risk_type;not null"`
	RiskLevel      enums.RiskLevel `gorm:"column:risk_level;not null"`
	RiskScore      float64         `gorm:"column:risk_score;not null;default:0"`
	Reason         string          `gorm:"column:reason;type:text"`
	Recommendation string          `gorm:"column:recommendation;type:text"`
	CalculatedAt   time.Time       `gorm:"column:calculated_at;autoCreateTime"`
}

func (r *RiskAssessment) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
