package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/db/models"
)

// ProductDTO is the catalog read model returned to API clients.
type ProductDTO struct {
	ID             uuid.UUID  `json:"id"`
	MerchantID     uuid.UUID  `json:"merchant_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Ingredients    string     `json:"ingredients"`
	Stock          int        `json:"stock"`
	Price          float64    `json:"price"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToDTO maps the persistence model onto the read model.
func ToDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:             product.ID,
		MerchantID:     product.MerchantID,
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		Ingredients:    product.Ingredients,
		Stock:          product.Stock,
		Price:          product.Price,
		ExpirationDate: product.ExpirationDate,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// ToDTOs maps a slice of products onto read models.
func ToDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *ToDTO(&products[i]))
	}
	return out
}
