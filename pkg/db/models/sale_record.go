package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRecord is one day of sales for a product. Rows are unique per
// (product_id, date); repeated sales on the same day accumulate.
type SaleRecord struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_sale_records_product_date"`
	Date            time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_sale_records_product_date"`
	QuantitySold    int       `gorm:"column:quantity_sold;not null;default:0"`
	Revenue         float64   `gorm:"column:revenue;not null;default:0"`
	Views           int       `gorm:"column:views;not null;default:0"`
	PopularityScore float64   `gorm:"column:popularity_score;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *SaleRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
