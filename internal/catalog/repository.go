package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// Repository wires together catalog persistence helpers.
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

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForMerchant loads the product only when owned by the merchant.
func (r *Repository) FindByIDForMerchant(ctx context.Context, id, merchantID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND merchant_id = ?", id, merchantID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByMerchant returns every product owned by the merchant, newest first.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByIDs returns the merchant's products matching the provided ids.
func (r *Repository) ListByIDs(ctx context.Context, merchantID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND id IN ?", merchantID, ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindMatching returns the merchant's products whose name, description,
// category, or ingredients contain searchQuery, optionally narrowed to rows
// whose ingredients contain ingredient. Matching is case-insensitive.
func (r *Repository) FindMatching(ctx context.Context, merchantID uuid.UUID, searchQuery, ingredient string) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID)

	if q := strings.TrimSpace(searchQuery); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(ingredients) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if ing := strings.TrimSpace(ingredient); ing != "" {
		tx = tx.Where("LOWER(ingredients) LIKE ?", "%"+strings.ToLower(ing)+"%")
	}

	var products []models.Product
	if err := tx.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByName returns the merchant's products whose name contains the needle.
func (r *Repository) FindByName(ctx context.Context, merchantID uuid.UUID, name string) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	if err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND LOWER(name) LIKE ?", merchantID, pattern).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update persists the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product row and its dependent records.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// DeleteByIDs removes the merchant's products matching the ids.
func (r *Repository) DeleteByIDs(ctx context.Context, merchantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("merchant_id = ? AND id IN ?", merchantID, ids).
		Delete(&models.Product{}).Error
}

// CountByMerchant returns the merchant's catalog size.
func (r *Repository) CountByMerchant(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("merchant_id = ?", merchantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IsNotFound reports whether err is the driver's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
