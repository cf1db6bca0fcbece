package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents an entry in the customer directory. The billing
// core only reads it to capture a snapshot at invoice creation time.
type Customer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	DocumentType   string         `gorm:"size:20" json:"document_type"`
	DocumentNumber string         `gorm:"size:50;index" json:"document_number"`
	Address        *string        `gorm:"type:text" json:"address,omitempty"`
	Phone          *string        `gorm:"size:50" json:"phone,omitempty"`
	Email          *string        `gorm:"size:255" json:"email,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Snapshot captures the customer fields frozen into an invoice so later
// directory edits do not alter billing history.
func (c *Customer) Snapshot() CustomerSnapshot {
	s := CustomerSnapshot{
		Name:           c.Name,
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
	}
	if c.Address != nil {
		s.Address = *c.Address
	}
	if c.Phone != nil {
		s.Phone = *c.Phone
	}
	if c.Email != nil {
		s.Email = *c.Email
	}
	return s
}

// CustomerSnapshot is the immutable copy of customer data embedded in an
// invoice at creation time.
type CustomerSnapshot struct {
	Name           string `gorm:"size:255" json:"name"`
	DocumentType   string `gorm:"size:20" json:"document_type"`
	DocumentNumber string `gorm:"size:50" json:"document_number"`
	Address        string `gorm:"type:text" json:"address,omitempty"`
	Phone          string `gorm:"size:50" json:"phone,omitempty"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
}
