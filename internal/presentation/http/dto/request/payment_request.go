package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterPaymentRequest represents a payment registration request.
// confirm_overpayment acknowledges an amount above the outstanding
// balance; without it such a request is rejected with a confirmable
// error so the operator can re-submit after explicit confirmation.
type RegisterPaymentRequest struct {
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	Method             string          `json:"method" binding:"required,oneof=cash card transfer other"`
	Reference          string          `json:"reference" binding:"omitempty,max=100"`
	Date               *time.Time      `json:"date"`
	Notes              string          `json:"notes"`
	CashBoxID          *uuid.UUID      `json:"cashbox_id"`
	ConfirmOverpayment bool            `json:"confirm_overpayment"`
}
