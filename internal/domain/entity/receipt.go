package entity

import (
	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the business header shown at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	Footer    string `json:"footer,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ReceiptPayment summarises one payment on a receipt.
type ReceiptPayment struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Date      string          `json:"date"`
}

// Receipt is a value object composed from invoice and payment data at
// read time. It is not a database entity.
type Receipt struct {
	Header      ReceiptHeader    `json:"header"`
	Number      string           `json:"number"`
	Date        string           `json:"date"`
	Customer    string           `json:"customer,omitempty"`
	PaymentType string           `json:"payment_type,omitempty"`
	Items       []ReceiptItem    `json:"items"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	TaxTotal    decimal.Decimal  `json:"tax_total"`
	Rounding    decimal.Decimal  `json:"rounding"`
	Total       decimal.Decimal  `json:"total"`
	Payments    []ReceiptPayment `json:"payments"`
	Paid        decimal.Decimal  `json:"paid"`
	Balance     decimal.Decimal  `json:"balance"`
}

// BuildReceipt composes the printable receipt payload for an invoice.
func BuildReceipt(header ReceiptHeader, inv *Invoice) Receipt {
	r := Receipt{
		Header:      header,
		Date:        inv.InvoiceDate.Format("2006-01-02"),
		Customer:    inv.Customer.Name,
		PaymentType: string(inv.PaymentType),
		Subtotal:    inv.Subtotal,
		TaxTotal:    inv.TaxTotal,
		Rounding:    inv.Rounding,
		Total:       inv.Total,
		Paid:        inv.PaidAmount(),
		Balance:     inv.Balance,
	}
	if inv.Number != nil {
		r.Number = *inv.Number
	}
	for _, l := range inv.Lines {
		r.Items = append(r.Items, ReceiptItem{
			Description: l.Description,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	for _, p := range inv.Payments {
		r.Payments = append(r.Payments, ReceiptPayment{
			Method:    string(p.Method),
			Amount:    p.Amount,
			Reference: p.Reference,
			Date:      p.Date.Format("2006-01-02"),
		})
	}
	return r
}
