package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceSeries is a named numbering sequence. Numbers are drawn on
// issuance, increase monotonically per series and are never reused,
// even when the issuing invoice is later cancelled.
type InvoiceSeries struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Prefix    string    `gorm:"size:20" json:"prefix"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new series
func (s *InvoiceSeries) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceSeries model
func (InvoiceSeries) TableName() string {
	return "invoice_series"
}

// FormatNumber renders a sequence value as the printable invoice number
func (s *InvoiceSeries) FormatNumber(value int64) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = s.Code
	}
	return fmt.Sprintf("%s-%06d", prefix, value)
}
