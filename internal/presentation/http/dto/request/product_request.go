package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name    string          `json:"name" binding:"required,min=2,max=255"`
	Code    string          `json:"code" binding:"omitempty,max=100"`
	Unit    string          `json:"unit" binding:"omitempty,max=50"`
	Price   decimal.Decimal `json:"price"`
	TaxRate decimal.Decimal `json:"tax_rate"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name     *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Code     *string          `json:"code" binding:"omitempty,min=1,max=100"`
	Unit     *string          `json:"unit" binding:"omitempty,max=50"`
	Price    *decimal.Decimal `json:"price"`
	TaxRate  *decimal.Decimal `json:"tax_rate"`
	IsActive *bool            `json:"is_active"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
