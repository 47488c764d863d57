package automation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// Repository persists automation history rows.
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

// Create persists a new history row.
func (r *Repository) Create(ctx context.Context, history *models.AutomationHistory) (*models.AutomationHistory, error) {
	if err := r.db.WithContext(ctx).Create(history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// FindByIDForMerchant loads a history row owned by the merchant.
func (r *Repository) FindByIDForMerchant(ctx context.Context, id, merchantID uuid.UUID) (*models.AutomationHistory, error) {
	var history models.AutomationHistory
	err := r.db.WithContext(ctx).
		First(&history, "id = ? AND merchant_id = ?", id, merchantID).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// FindLatestForMerchant loads the merchant's most recent history row.
func (r *Repository) FindLatestForMerchant(ctx context.Context, merchantID uuid.UUID) (*models.AutomationHistory, error) {
	var history models.AutomationHistory
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("executed_at DESC").
		First(&history).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// ListForMerchant returns the merchant's history rows, newest first.
func (r *Repository) ListForMerchant(ctx context.Context, merchantID uuid.UUID, limit int) ([]models.AutomationHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.AutomationHistory
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the history row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AutomationHistory{}, "id = ?", id).Error
}

// IsNotFound reports whether err is the driver's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
