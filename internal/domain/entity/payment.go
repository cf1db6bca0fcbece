package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment represents money received against an issued invoice. Payments
// are append-only: there is no edit or delete operation, corrections are
// made by registering further payments.
type Payment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount    decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method    enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	// Reference carries the external transaction id; required for card
	// and transfer payments.
	Reference string     `gorm:"size:100" json:"reference,omitempty"`
	Date      time.Time  `gorm:"not null" json:"date"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	CashBoxID *uuid.UUID `gorm:"type:uuid;index" json:"cashbox_id,omitempty"`
	// CashMovementID links the SALE movement this payment posted to a
	// cash session, when one was posted.
	CashMovementID *uuid.UUID         `gorm:"type:uuid" json:"cash_movement_id,omitempty"`
	ReceivedBy     uuid.UUID          `gorm:"type:uuid;not null" json:"received_by"`
	Status         enum.PaymentStatus `gorm:"size:20;not null;default:'confirmed'" json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
