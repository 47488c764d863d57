package risk

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// Repository persists risk assessment rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ReplaceForProduct deletes any existing assessments for the product and
// inserts the fresh set.
func (r *Repository) ReplaceForProduct(ctx context.Context, productID uuid.UUID, assessments []models.RiskAssessment) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.RiskAssessment{}).Error; err != nil {
		return err
	}
	if len(assessments) == 0 {
		return nil
	}
	return tx.Create(&assessments).Error
}

// ListForProduct returns the current assessments for the product.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]models.RiskAssessment, error) {
	var assessments []models.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("risk_score DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}
