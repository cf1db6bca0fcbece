package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashBox represents a physical cash drawer. At most one session may be
// open at any time; the box status mirrors that invariant.
type CashBox struct {
	ID                     uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Code                   string             `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name                   string             `gorm:"size:255;not null" json:"name"`
	Location               string             `gorm:"size:255" json:"location,omitempty"`
	Status                 enum.CashBoxStatus `gorm:"size:10;not null;default:'CLOSED'" json:"status"`
	AssignedUserID         *uuid.UUID         `gorm:"type:uuid" json:"assigned_user_id,omitempty"`
	RequiresOpeningClosing bool               `gorm:"default:true" json:"requires_opening_closing"`
	CurrentSessionID       *uuid.UUID         `gorm:"type:uuid" json:"current_session_id,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`

	// Relationships
	CurrentSession *CashBoxSession  `gorm:"foreignKey:CurrentSessionID" json:"current_session,omitempty"`
	Sessions       []CashBoxSession `gorm:"foreignKey:CashBoxID" json:"sessions,omitempty"`
}

// BeforeCreate generates a UUID before creating a new cash box
func (b *CashBox) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashBox model
func (CashBox) TableName() string {
	return "cash_boxes"
}

// CashBoxSession is one open/close cycle of a cash box. It is created
// exactly once by opening and finalised exactly once by closing; sealed
// sessions are never mutated again.
type CashBoxSession struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CashBoxID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"cashbox_id"`
	OpenedAt       time.Time       `gorm:"not null" json:"opened_at"`
	OpenedByUserID uuid.UUID       `gorm:"type:uuid;not null" json:"opened_by_user_id"`
	InitialAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"initial_amount"`
	OpeningNote    string          `gorm:"type:text" json:"opening_note,omitempty"`

	// Closing fields stay nil until the session is sealed.
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	ClosedByUserID *uuid.UUID       `gorm:"type:uuid" json:"closed_by_user_id,omitempty"`
	CountedAmount  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"counted_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `gorm:"type:decimal(18,2)" json:"expected_amount,omitempty"`
	// Difference = counted - expected. Positive is overage, negative is
	// shortage, zero is an exact count.
	Difference  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"difference,omitempty"`
	ClosingNote string           `gorm:"type:text" json:"closing_note,omitempty"`

	Movements []CashBoxMovement `gorm:"foreignKey:SessionID" json:"movements,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new session
func (s *CashBoxSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashBoxSession model
func (CashBoxSession) TableName() string {
	return "cash_box_sessions"
}

// IsClosed reports whether the session has been sealed
func (s *CashBoxSession) IsClosed() bool {
	return s.ClosedAt != nil
}

// ComputeExpected derives the float the drawer should contain from the
// initial amount and the recorded movements. Movement order does not
// matter; the reconciliation formula is a pure sum.
func (s *CashBoxSession) ComputeExpected() decimal.Decimal {
	expected := s.InitialAmount
	for _, m := range s.Movements {
		switch m.Type.Direction() {
		case 1:
			expected = expected.Add(m.Amount)
		case -1:
			expected = expected.Sub(m.Amount)
		}
	}
	return expected
}

// CashBoxMovement is an immutable event in the cash ledger. Movements
// are never modified or deleted; corrections are posted as new entries.
type CashBoxMovement struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SessionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"session_id"`
	Type      enum.MovementType `gorm:"size:20;not null" json:"type"`
	// Amount is always positive; Type implies the direction.
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Reference string          `gorm:"size:100" json:"reference,omitempty"`
	Note      string          `gorm:"type:text" json:"note,omitempty"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *CashBoxMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashBoxMovement model
func (CashBoxMovement) TableName() string {
	return "cash_box_movements"
}
