package money

import (
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DiscountKind discriminates the discount variant applied to a line.
type DiscountKind int

const (
	DiscountNone DiscountKind = iota
	DiscountPercent
	DiscountAmount
)

// Discount is a tagged variant: either no discount, a percentage of the
// gross line amount, or an absolute amount. Modelling it this way makes
// "percent XOR amount" unrepresentable instead of a convention.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// NoDiscount returns the zero discount
func NoDiscount() Discount {
	return Discount{Kind: DiscountNone}
}

// PercentDiscount returns a percentage discount
func PercentDiscount(percent decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercent, Value: percent}
}

// AmountDiscount returns an absolute discount
func AmountDiscount(amount decimal.Decimal) Discount {
	return Discount{Kind: DiscountAmount, Value: amount}
}

// LineAmounts holds the derived amounts of a single invoice line
type LineAmounts struct {
	LineBase  decimal.Decimal `json:"line_base"`
	LineTax   decimal.Decimal `json:"line_tax"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceTotals holds the aggregated amounts of an invoice
type InvoiceTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxTotal decimal.Decimal `json:"tax_total"`
	Total    decimal.Decimal `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds to the currency minor unit using half-up rounding
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine derives base, tax and total for one line.
//
// base  = max(0, qty*unitPrice - discount), rounded to 2 decimals
// tax   = round2(base * taxRate / 100)
// total = base + tax
//
// The function is pure: identical inputs always yield identical outputs.
func ComputeLine(qty, unitPrice decimal.Decimal, discount Discount, taxRate decimal.Decimal) (LineAmounts, error) {
	if !qty.IsPositive() {
		return LineAmounts{}, apperror.NewFieldError("qty", "must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, apperror.NewFieldError("unit_price", "must not be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return LineAmounts{}, apperror.NewFieldError("tax_rate", "must be between 0 and 100")
	}
	if discount.Kind != DiscountNone && discount.Value.IsNegative() {
		return LineAmounts{}, apperror.NewFieldError("discount", "must not be negative")
	}

	gross := qty.Mul(unitPrice)

	var off decimal.Decimal
	switch discount.Kind {
	case DiscountPercent:
		if discount.Value.GreaterThan(hundred) {
			return LineAmounts{}, apperror.NewFieldError("discount_percent", "must be between 0 and 100")
		}
		off = gross.Mul(discount.Value).Div(hundred)
	case DiscountAmount:
		off = discount.Value
	}

	base := Round2(gross.Sub(off))
	if base.IsNegative() {
		base = decimal.Zero
	}
	tax := Round2(base.Mul(taxRate).Div(hundred))

	return LineAmounts{
		LineBase:  base,
		LineTax:   tax,
		LineTotal: Round2(base.Add(tax)),
	}, nil
}

// ComputeInvoiceTotals aggregates line amounts into invoice totals.
// rounding is an arbitrary signed adjustment applied to the final total.
func ComputeInvoiceTotals(lines []LineAmounts, rounding decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineBase)
		taxTotal = taxTotal.Add(l.LineTax)
	}
	return InvoiceTotals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    Round2(subtotal.Add(taxTotal).Add(rounding)),
	}
}
