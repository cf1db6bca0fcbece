package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/domain/money"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the aggregate root of the billing ledger. Lines are owned
// by their invoice and have no independent lifecycle; payments reference
// the invoice but are owned by the payment register.
type Invoice struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SeriesCode string    `gorm:"size:20;not null;uniqueIndex:idx_invoices_series_number" json:"series_code"`
	// Number stays nil until the invoice is issued and is immutable and
	// unique per series afterwards.
	Number   *string            `gorm:"size:50;uniqueIndex:idx_invoices_series_number" json:"number,omitempty"`
	Status   enum.InvoiceStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Currency string             `gorm:"size:3;not null;default:'COP'" json:"currency"`

	CustomerID uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`

	PaymentType enum.PaymentType `gorm:"size:10;not null" json:"payment_type"`
	InvoiceDate time.Time        `gorm:"type:date;not null" json:"invoice_date"`
	DueDate     *time.Time       `gorm:"type:date" json:"due_date,omitempty"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`

	// Rounding is an arbitrary signed adjustment applied to the total.
	Rounding decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"rounding"`
	Subtotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	TaxTotal decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_total"`
	Total    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	// Balance = Total - sum of payment amounts. Deliberately not clamped:
	// a confirmed overpayment drives it negative (credit to the customer).
	Balance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`

	Notes string `gorm:"type:text" json:"notes"`
	// InternalNotes are working notes on a draft; issuing discards them.
	InternalNotes string `gorm:"type:text" json:"internal_notes,omitempty"`

	Payments []Payment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`

	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Recalculate recomputes every derived amount from the lines, the
// rounding adjustment and the registered payments. It must run inside
// the same transaction as any mutation of those inputs.
func (i *Invoice) Recalculate() error {
	amounts := make([]money.LineAmounts, 0, len(i.Lines))
	for idx := range i.Lines {
		if err := i.Lines[idx].recalculate(); err != nil {
			return err
		}
		amounts = append(amounts, money.LineAmounts{
			LineBase:  i.Lines[idx].LineBase,
			LineTax:   i.Lines[idx].LineTax,
			LineTotal: i.Lines[idx].LineTotal,
		})
	}

	totals := money.ComputeInvoiceTotals(amounts, i.Rounding)
	i.Subtotal = totals.Subtotal
	i.TaxTotal = totals.TaxTotal
	i.Total = totals.Total

	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	i.Balance = i.Total.Sub(paid)
	return nil
}

// PaidAmount returns the sum of all registered payment amounts
func (i *Invoice) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// InvoiceLine is one priced item or service entry on an invoice
type InvoiceLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	// ProductID is a weak reference used only for pre-fill; the line does
	// not depend on the product existing afterwards.
	ProductID   *uuid.UUID      `gorm:"type:uuid" json:"product_id,omitempty"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"qty"`
	Unit        string          `gorm:"size:50" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	// At most one of DiscountPercent/DiscountAmount may be set; the pair
	// maps to the money.Discount variant through Discount().
	DiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"discount_amount,omitempty"`
	TaxRate         decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	LineBase        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"line_base"`
	LineTax         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"line_tax"`
	LineTotal       decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"line_total"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new invoice line
func (l *InvoiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceLine model
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Discount converts the persisted pair of optional columns into the
// tagged discount variant, rejecting lines with both fields set.
func (l *InvoiceLine) Discount() (money.Discount, error) {
	if l.DiscountPercent != nil && l.DiscountAmount != nil {
		return money.Discount{}, apperror.NewFieldError("discount", "percent and amount discounts are mutually exclusive")
	}
	if l.DiscountPercent != nil {
		return money.PercentDiscount(*l.DiscountPercent), nil
	}
	if l.DiscountAmount != nil {
		return money.AmountDiscount(*l.DiscountAmount), nil
	}
	return money.NoDiscount(), nil
}

// Validate checks the line's own fields independent of invoice state
func (l *InvoiceLine) Validate() error {
	var fields []apperror.FieldError
	if l.Description == "" {
		fields = append(fields, apperror.FieldError{Field: "description", Message: "must not be empty"})
	}
	if !l.Qty.IsPositive() {
		fields = append(fields, apperror.FieldError{Field: "qty", Message: "must be greater than zero"})
	}
	if l.UnitPrice.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "unit_price", Message: "must not be negative"})
	}
	if l.DiscountPercent != nil && l.DiscountAmount != nil {
		fields = append(fields, apperror.FieldError{Field: "discount", Message: "percent and amount discounts are mutually exclusive"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

func (l *InvoiceLine) recalculate() error {
	discount, err := l.Discount()
	if err != nil {
		return err
	}
	amounts, err := money.ComputeLine(l.Qty, l.UnitPrice, discount, l.TaxRate)
	if err != nil {
		return err
	}
	l.LineBase = amounts.LineBase
	l.LineTax = amounts.LineTax
	l.LineTotal = amounts.LineTotal
	return nil
}
