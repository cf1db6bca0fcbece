package enum

// PaymentMethod represents the means by which a payment was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid reports whether the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// RequiresReference reports whether an external transaction reference is
// mandatory for this method
func (m PaymentMethod) RequiresReference() bool {
	return m == PaymentMethodCard || m == PaymentMethodTransfer
}

// AffectsCashFloat reports whether a payment with this method moves
// physical cash and should be posted to an open cash box session
func (m PaymentMethod) AffectsCashFloat() bool {
	return m == PaymentMethodCash
}

// PaymentStatus represents the settlement state of a single payment
type PaymentStatus string

const (
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValid reports whether the payment status is known
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusPending || s == PaymentStatusFailed
}
