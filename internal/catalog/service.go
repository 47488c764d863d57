package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/db/models"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

// Service exposes merchant catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, merchantID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, merchantID, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, merchantID uuid.UUID) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, merchantID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, merchantID, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    string
	Category       string
	Ingredients    string
	Stock          int
	Price          float64
	ExpirationDate *time.Time
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Category       *string
	Ingredients    *string
	Stock          *int
	Price          *float64
	ExpirationDate *time.Time
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct persists a new catalog entry for the merchant.
func (s *service) CreateProduct(ctx context.Context, merchantID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := &models.Product{
		MerchantID:     merchantID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		Category:       strings.TrimSpace(input.Category),
		Ingredients:    strings.TrimSpace(input.Ingredients),
		Stock:          input.Stock,
		Price:          input.Price,
		ExpirationDate: input.ExpirationDate,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return ToDTO(created), nil
}

// GetProduct loads one product owned by the merchant.
func (s *service) GetProduct(ctx context.Context, merchantID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDForMerchant(ctx, productID, merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return ToDTO(product), nil
}

// ListProducts returns the merchant's full catalog.
func (s *service) ListProducts(ctx context.Context, merchantID uuid.UUID) ([]ProductDTO, error) {
	products, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return ToDTOs(products), nil
}

// UpdateProduct applies the provided partial mutation to the product.
func (s *service) UpdateProduct(ctx context.Context, merchantID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByIDForMerchant(ctx, productID, merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Ingredients != nil {
		product.Ingredients = strings.TrimSpace(*input.Ingredients)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.ExpirationDate != nil {
		product.ExpirationDate = input.ExpirationDate
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return ToDTO(updated), nil
}

// DeleteProduct removes the product when owned by the merchant.
func (s *service) DeleteProduct(ctx context.Context, merchantID, productID uuid.UUID) error {
	if _, err := s.repo.FindByIDForMerchant(ctx, productID, merchantID); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}
