package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a single merchant catalog entry.
type Product struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	MerchantID     uuid.UUID  `gorm:"column:merchant_id;type:uuid;not null;index"`
	Name           string     `gorm:"column:name;not null"`
	Description    string     `gorm:"column:description;type:text"`
	Category       string     `gorm:"column:category"`
	Ingredients    string     `gorm:"column:ingredients;type:text"`
	Stock          int        `gorm:"column:stock;not null;default:0"`
	Price          float64    `gorm:"column:price;not null;default:0"`
	ExpirationDate *time.Time `gorm:"column:expiration_date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Sales []SaleRecord     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Risks []RiskAssessment `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
