package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations.
// Implementations must persist the invoice together with its lines.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetWithRelations loads the invoice with its lines and payments.
	GetWithRelations(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, seriesCode, number string) (*entity.Invoice, error)
	// Save persists the invoice and replaces its line set atomically.
	Save(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// ListWithBalance returns issued or partially paid invoices with a
	// positive outstanding balance.
	ListWithBalance(ctx context.Context, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.InvoiceStatus
	CustomerID *uuid.UUID
	SeriesCode string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// SeriesRepository defines the interface for invoice numbering sequences
type SeriesRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.InvoiceSeries, error)
	Create(ctx context.Context, series *entity.InvoiceSeries) error
	List(ctx context.Context) ([]entity.InvoiceSeries, error)
	// NextNumber atomically increments the sequence for the series code
	// (creating the series on first use) and returns the drawn value.
	// Drawn values are never reused.
	NextNumber(ctx context.Context, code string) (int64, string, error)
}
