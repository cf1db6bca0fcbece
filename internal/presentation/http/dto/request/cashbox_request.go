package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCashBoxRequest represents a cash box creation request
type CreateCashBoxRequest struct {
	Code                   string     `json:"code" binding:"required,max=50"`
	Name                   string     `json:"name" binding:"required,max=255"`
	Location               string     `json:"location" binding:"omitempty,max=255"`
	AssignedUserID         *uuid.UUID `json:"assigned_user_id"`
	RequiresOpeningClosing *bool      `json:"requires_opening_closing"`
}

// OpenSessionRequest represents a session opening request
type OpenSessionRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Note          string          `json:"note"`
}

// AddMovementRequest represents a manual cash movement request. The
// amount is always positive; the type implies the direction.
type AddMovementRequest struct {
	Type      string          `json:"type" binding:"required,oneof=SALE INCOME EXPENSE WITHDRAWAL ADJUSTMENT"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference" binding:"omitempty,max=100"`
	Note      string          `json:"note"`
}

// CloseSessionRequest represents a session close request
type CloseSessionRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Note          string          `json:"note"`
}
