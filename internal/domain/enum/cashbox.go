package enum

// CashBoxStatus represents whether a cash box currently has an open session
type CashBoxStatus string

const (
	CashBoxStatusOpen   CashBoxStatus = "OPEN"
	CashBoxStatusClosed CashBoxStatus = "CLOSED"
)

// MovementType classifies a cash box movement. The amount is always
// positive; the type implies the direction of the float change.
type MovementType string

const (
	MovementTypeSale       MovementType = "SALE"
	MovementTypeIncome     MovementType = "INCOME"
	MovementTypeExpense    MovementType = "EXPENSE"
	MovementTypeWithdrawal MovementType = "WITHDRAWAL"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeOpening    MovementType = "OPENING"
	MovementTypeClosing    MovementType = "CLOSING"
)

// IsValid reports whether the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale, MovementTypeIncome, MovementTypeExpense,
		MovementTypeWithdrawal, MovementTypeAdjustment,
		MovementTypeOpening, MovementTypeClosing:
		return true
	}
	return false
}

// Manual reports whether the type may be posted through AddMovement.
// OPENING and CLOSING entries are written by the session lifecycle itself.
func (t MovementType) Manual() bool {
	return t != MovementTypeOpening && t != MovementTypeClosing
}

// Direction returns +1 for types that increase the float, -1 for types
// that decrease it, and 0 for audit-only entries (OPENING/CLOSING record
// the counted float, they do not move it).
func (t MovementType) Direction() int {
	switch t {
	case MovementTypeSale, MovementTypeIncome, MovementTypeAdjustment:
		return 1
	case MovementTypeExpense, MovementTypeWithdrawal:
		return -1
	default:
		return 0
	}
}
