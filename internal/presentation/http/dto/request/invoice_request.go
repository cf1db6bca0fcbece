package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest represents one line of an invoice. When product_id
// is set, omitted fields are pre-filled from the catalog.
type InvoiceLineRequest struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     string           `json:"description" binding:"omitempty,max=255"`
	Qty             decimal.Decimal  `json:"qty"`
	Unit            string           `json:"unit" binding:"omitempty,max=50"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	CustomerID    uuid.UUID            `json:"customer_id" binding:"required"`
	SeriesCode    string               `json:"series_code" binding:"required,max=20"`
	Currency      string               `json:"currency" binding:"omitempty,len=3"`
	PaymentType   string               `json:"payment_type" binding:"required,oneof=cash credit"`
	InvoiceDate   *time.Time           `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date"`
	Rounding      *decimal.Decimal     `json:"rounding"`
	Notes         string               `json:"notes"`
	InternalNotes string               `json:"internal_notes"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
}

// UpdateInvoiceRequest represents a draft invoice patch. Nil fields are
// left untouched; a non-nil lines array replaces the whole line set.
type UpdateInvoiceRequest struct {
	PaymentType   *string              `json:"payment_type" binding:"omitempty,oneof=cash credit"`
	DueDate       *time.Time           `json:"due_date"`
	Rounding      *decimal.Decimal     `json:"rounding"`
	Notes         *string              `json:"notes"`
	InternalNotes *string              `json:"internal_notes"`
	Lines         []InvoiceLineRequest `json:"lines"`
}

// InvoiceFilterRequest represents invoice filter parameters
type InvoiceFilterRequest struct {
	Status     string `form:"status"`
	SeriesCode string `form:"series_code"`
	CustomerID string `form:"customer_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
