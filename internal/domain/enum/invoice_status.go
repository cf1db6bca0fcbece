package enum

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
	// InvoiceStatusRefunded is declared so records imported from the
	// legacy system remain representable. No operation transitions an
	// invoice into this status.
	InvoiceStatusRefunded InvoiceStatus = "refunded"
)

// IsValid reports whether the status is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled || s == InvoiceStatusRefunded
}

// Payable reports whether payments may be registered against an invoice
// in this status
func (s InvoiceStatus) Payable() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid
}

// Cancellable reports whether the invoice may still be cancelled
func (s InvoiceStatus) Cancellable() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid
}

// PaymentType represents how an invoice is expected to be settled
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "cash"
	PaymentTypeCredit PaymentType = "credit"
)

// IsValid reports whether the payment type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCash || t == PaymentTypeCredit
}
