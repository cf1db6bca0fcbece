package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/mesafacil/backoffice-api/pkg/keyedmutex"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InvoiceService owns the invoice lifecycle: creation, draft edits,
// issuance with series numbering, and cancellation.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	seriesRepo   repository.SeriesRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	tx           repository.Transactor
	locks        *keyedmutex.KeyedMutex
	receipt      entity.ReceiptHeader
	log          zerolog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	seriesRepo repository.SeriesRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	tx repository.Transactor,
	locks *keyedmutex.KeyedMutex,
	receipt entity.ReceiptHeader,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		seriesRepo:   seriesRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		tx:           tx,
		locks:        locks,
		receipt:      receipt,
		log:          log,
	}
}

// LineInput represents one line of an invoice. When ProductID is set,
// missing description, unit, price and tax rate are pre-filled from the
// catalog; the line keeps its own copy of every value afterwards.
type LineInput struct {
	ProductID       *uuid.UUID
	Description     string
	Qty             decimal.Decimal
	Unit            string
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	TaxRate         *decimal.Decimal
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	CustomerID    uuid.UUID
	SeriesCode    string
	Currency      string
	PaymentType   enum.PaymentType
	InvoiceDate   time.Time
	DueDate       *time.Time
	Rounding      decimal.Decimal
	Notes         string
	InternalNotes string
	Lines         []LineInput
}

// UpdateInvoiceInput represents a draft invoice patch. Nil fields are
// left untouched; a non-nil Lines slice replaces the whole line set.
type UpdateInvoiceInput struct {
	PaymentType   *enum.PaymentType
	DueDate       *time.Time
	Rounding      *decimal.Decimal
	Notes         *string
	InternalNotes *string
	Lines         []LineInput
}

// CreateInvoice creates a draft invoice with a snapshot of the customer.
// No number is assigned until issuance.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewFieldError("lines", "at least one line is required")
	}
	if !input.PaymentType.IsValid() {
		return nil, apperror.NewFieldError("payment_type", "must be cash or credit")
	}
	if input.SeriesCode == "" {
		return nil, apperror.NewFieldError("series_code", "must not be empty")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	lines, err := s.buildLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "COP"
	}
	invoiceDate := input.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	invoice := &entity.Invoice{
		SeriesCode:    input.SeriesCode,
		Status:        enum.InvoiceStatusDraft,
		Currency:      currency,
		CustomerID:    customer.ID,
		Customer:      customer.Snapshot(),
		PaymentType:   input.PaymentType,
		InvoiceDate:   invoiceDate,
		DueDate:       input.DueDate,
		Lines:         lines,
		Rounding:      input.Rounding,
		Notes:         input.Notes,
		InternalNotes: input.InternalNotes,
	}

	if err := invoice.Recalculate(); err != nil {
		return nil, err
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.invoiceRepo.Create(ctx, invoice)
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("series", invoice.SeriesCode).
		Str("total", invoice.Total.String()).
		Msg("invoice created")

	return invoice, nil
}

// UpdateInvoice applies a patch to a draft invoice and recomputes every
// derived amount. Issued invoices are immutable except for payment
// registration and cancellation.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, patch *UpdateInvoiceInput) (*entity.Invoice, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	invoice, err := s.invoiceRepo.GetWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if invoice.Status != enum.InvoiceStatusDraft {
		return nil, apperror.NewInvalidStateError("only draft invoices can be edited")
	}

	if patch.PaymentType != nil {
		if !patch.PaymentType.IsValid() {
			return nil, apperror.NewFieldError("payment_type", "must be cash or credit")
		}
		invoice.PaymentType = *patch.PaymentType
	}
	if patch.DueDate != nil {
		invoice.DueDate = patch.DueDate
	}
	if patch.Rounding != nil {
		invoice.Rounding = *patch.Rounding
	}
	if patch.Notes != nil {
		invoice.Notes = *patch.Notes
	}
	if patch.InternalNotes != nil {
		invoice.InternalNotes = *patch.InternalNotes
	}
	if patch.Lines != nil {
		if len(patch.Lines) == 0 {
			return nil, apperror.NewFieldError("lines", "at least one line is required")
		}
		lines, err := s.buildLines(ctx, patch.Lines)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		invoice.Lines = lines
	}

	if err := invoice.Recalculate(); err != nil {
		return nil, err
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.invoiceRepo.Save(ctx, invoice)
	}); err != nil {
		return nil, err
	}

	return invoice, nil
}

// IssueInvoice assigns the next number in the invoice's series, freezes
// the line set and discards internal notes. Numbers are drawn inside the
// same transaction as the status change and are never reused.
func (s *InvoiceService) IssueInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	invoice, err := s.invoiceRepo.GetWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if invoice.Status != enum.InvoiceStatusDraft {
		return nil, apperror.NewInvalidStateError("only draft invoices can be issued")
	}

	if err := s.validateForIssue(invoice); err != nil {
		return nil, err
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, number, err := s.seriesRepo.NextNumber(ctx, invoice.SeriesCode)
		if err != nil {
			return err
		}
		now := time.Now()
		invoice.Number = &number
		invoice.Status = enum.InvoiceStatusIssued
		invoice.InternalNotes = ""
		invoice.IssuedAt = &now
		return s.invoiceRepo.Save(ctx, invoice)
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("number", *invoice.Number).
		Msg("invoice issued")

	return invoice, nil
}

// CancelInvoice moves the invoice to its terminal cancelled status.
// Payments already posted to cash sessions are not reversed; the count
// of such postings is returned so the operator can register a
// compensating movement.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, int, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	invoice, err := s.invoiceRepo.GetWithRelations(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if invoice == nil {
		return nil, 0, apperror.NewNotFoundError("Invoice")
	}
	if !invoice.Status.Cancellable() {
		return nil, 0, apperror.NewInvalidStateError("invoice cannot be cancelled in status " + string(invoice.Status))
	}

	postedMovements := 0
	for _, p := range invoice.Payments {
		if p.CashMovementID != nil {
			postedMovements++
		}
	}

	invoice.Status = enum.InvoiceStatusCancelled
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.invoiceRepo.Save(ctx, invoice)
	}); err != nil {
		return nil, 0, err
	}

	if postedMovements > 0 {
		s.log.Warn().
			Str("invoice_id", invoice.ID.String()).
			Int("posted_movements", postedMovements).
			Msg("cancelled invoice has cash session postings that were not reversed")
	}

	return invoice, postedMovements, nil
}

// GetInvoice retrieves an invoice with its lines and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// ListDueInvoices returns invoices with an outstanding balance
func (s *InvoiceService) ListDueInvoices(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.ListWithBalance(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// GetReceipt composes the printable receipt payload for an invoice
func (s *InvoiceService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	r := entity.BuildReceipt(s.receipt, invoice)
	return &r, nil
}

// ListSeries returns all known numbering series
func (s *InvoiceService) ListSeries(ctx context.Context) ([]entity.InvoiceSeries, error) {
	return s.seriesRepo.List(ctx)
}

func (s *InvoiceService) buildLines(ctx context.Context, inputs []LineInput) ([]entity.InvoiceLine, error) {
	lines := make([]entity.InvoiceLine, 0, len(inputs))
	for i, in := range inputs {
		line := entity.InvoiceLine{
			ProductID:       in.ProductID,
			Position:        i,
			Description:     in.Description,
			Qty:             in.Qty,
			Unit:            in.Unit,
			DiscountPercent: in.DiscountPercent,
			DiscountAmount:  in.DiscountAmount,
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if in.TaxRate != nil {
			line.TaxRate = *in.TaxRate
		}

		// Catalog pre-fill: only fields the caller left empty.
		if in.ProductID != nil {
			product, err := s.productRepo.GetByID(ctx, *in.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, apperror.NewNotFoundError("Product")
			}
			if line.Description == "" {
				line.Description = product.Name
			}
			if line.Unit == "" {
				line.Unit = product.Unit
			}
			if in.UnitPrice == nil {
				line.UnitPrice = product.Price
			}
			if in.TaxRate == nil {
				line.TaxRate = product.TaxRate
			}
		}

		if err := line.Validate(); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *InvoiceService) validateForIssue(invoice *entity.Invoice) error {
	var fields []apperror.FieldError
	if len(invoice.Lines) == 0 {
		fields = append(fields, apperror.FieldError{Field: "lines", Message: "cannot issue an invoice without lines"})
	}
	for _, l := range invoice.Lines {
		if l.Description == "" || !l.Qty.IsPositive() {
			fields = append(fields, apperror.FieldError{Field: "lines", Message: "all lines must have a description and a positive quantity"})
			break
		}
	}
	for _, l := range invoice.Lines {
		if !l.UnitPrice.IsPositive() {
			fields = append(fields, apperror.FieldError{Field: "lines", Message: "all lines must have a positive unit price"})
			break
		}
	}
	if invoice.DueDate != nil && invoice.DueDate.Before(truncateToDay(invoice.InvoiceDate)) {
		fields = append(fields, apperror.FieldError{Field: "due_date", Message: "must not be earlier than the invoice date"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
