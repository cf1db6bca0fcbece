package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles the product catalog used to pre-fill invoice
// lines. Lines copy every value, so catalog edits never rewrite history.
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name    string
	Code    string
	Unit    string
	Price   decimal.Decimal
	TaxRate decimal.Decimal
}

// UpdateProductInput represents a product patch
type UpdateProductInput struct {
	Name     *string
	Code     *string
	Unit     *string
	Price    *decimal.Decimal
	TaxRate  *decimal.Decimal
	IsActive *bool
}

var taxRateMax = decimal.NewFromInt(100)

func validateProductFields(price, taxRate decimal.Decimal) error {
	var fields []apperror.FieldError
	if price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(taxRateMax) {
		fields = append(fields, apperror.FieldError{Field: "tax_rate", Message: "must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// CreateProduct creates a new catalog product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if input.Name == "" {
		return nil, apperror.NewFieldError("name", "must not be empty")
	}
	if err := validateProductFields(input.Price, input.TaxRate); err != nil {
		return nil, err
	}

	if input.Code != "" {
		existing, err := s.productRepo.GetByCode(ctx, input.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.ErrConflict
		}
	}

	product := &entity.Product{
		Name:     input.Name,
		Code:     input.Code,
		Unit:     input.Unit,
		Price:    input.Price,
		TaxRate:  input.TaxRate,
		IsActive: true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct applies a patch to a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewFieldError("name", "must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Code != nil {
		product.Code = *input.Code
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.TaxRate != nil {
		product.TaxRate = *input.TaxRate
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := validateProductFields(product.Price, product.TaxRate); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog. Invoice lines keep
// their copied values; the product reference is weak.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts lists catalog products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}
