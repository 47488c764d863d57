package trends

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// Repository persists daily sale records.
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

// FindByProductAndDate loads the sale record for one product and day.
func (r *Repository) FindByProductAndDate(ctx context.Context, productID uuid.UUID, date time.Time) (*models.SaleRecord, error) {
	var record models.SaleRecord
	err := r.db.WithContext(ctx).
		First(&record, "product_id = ? AND date = ?", productID, date).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new sale record row.
func (r *Repository) Create(ctx context.Context, record *models.SaleRecord) (*models.SaleRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update persists the full sale record row.
func (r *Repository) Update(ctx context.Context, record *models.SaleRecord) (*models.SaleRecord, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ListSince returns sale records for the product dated on or after start,
// ordered by date ascending.
func (r *Repository) ListSince(ctx context.Context, productID uuid.UUID, start time.Time) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND date >= ?", productID, start).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListForMerchantBetween returns sale records across the merchant's whole
// catalog within the inclusive date range, newest first. Zero bounds are
// skipped.
func (r *Repository) ListForMerchantBetween(ctx context.Context, merchantID uuid.UUID, from, to time.Time, limit int) ([]models.SaleRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.WithContext(ctx).
		Select("sale_records.*").
		Joins("JOIN products ON products.id = sale_records.product_id").
		Where("products.merchant_id = ?", merchantID)
	if !from.IsZero() {
		q = q.Where("sale_records.date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("sale_records.date <= ?", to)
	}
	var records []models.SaleRecord
	err := q.Order("sale_records.date DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// IsNotFound reports whether err is the driver's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
