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
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// paidTolerance absorbs residual cents when comparing a balance to zero.
var paidTolerance = decimal.NewFromFloat(0.01)

// PaymentService owns payment registration against issued invoices and
// the optional posting of cash movements to open sessions.
type PaymentService struct {
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	cashBoxRepo  repository.CashBoxRepository
	movementRepo repository.CashBoxMovementRepository
	tx           repository.Transactor
	locks        *keyedmutex.KeyedMutex
	log          zerolog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	cashBoxRepo repository.CashBoxRepository,
	movementRepo repository.CashBoxMovementRepository,
	tx repository.Transactor,
	locks *keyedmutex.KeyedMutex,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		cashBoxRepo:  cashBoxRepo,
		movementRepo: movementRepo,
		tx:           tx,
		locks:        locks,
		log:          log,
	}
}

// RegisterPaymentInput represents the register payment input
type RegisterPaymentInput struct {
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     enum.PaymentMethod
	Reference  string
	Date       time.Time
	Notes      string
	CashBoxID  *uuid.UUID
	ReceivedBy uuid.UUID
	// ConfirmOverpayment acknowledges a payment above the outstanding
	// balance. Without it, an overpaying registration is rejected with a
	// confirmable error instead of committing.
	ConfirmOverpayment bool
}

// PaymentPreview is the computed effect of a payment before commit
type PaymentPreview struct {
	InvoiceID            uuid.UUID          `json:"invoice_id"`
	CurrentBalance       decimal.Decimal    `json:"current_balance"`
	NewBalance           decimal.Decimal    `json:"new_balance"`
	ResultingStatus      enum.InvoiceStatus `json:"resulting_status"`
	RequiresConfirmation bool               `json:"requires_confirmation"`
}

// PreviewPayment computes the effect of registering a payment without
// mutating anything. The two-phase flow lets the caller surface the
// overpayment confirmation before committing.
func (s *PaymentService) PreviewPayment(ctx context.Context, input *RegisterPaymentInput) (*PaymentPreview, error) {
	invoice, err := s.invoiceRepo.GetWithRelations(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err := s.validatePayment(invoice, input); err != nil {
		return nil, err
	}

	newBalance := invoice.Balance.Sub(input.Amount)
	return &PaymentPreview{
		InvoiceID:            invoice.ID,
		CurrentBalance:       invoice.Balance,
		NewBalance:           newBalance,
		ResultingStatus:      statusForBalance(newBalance),
		RequiresConfirmation: input.Amount.GreaterThan(invoice.Balance),
	}, nil
}

// RegisterPayment appends a payment to an issued invoice, recomputes the
// balance and status, and posts a SALE movement to the cash box session
// when applicable. All writes happen in one transaction; registrations
// against the same invoice are serialized.
func (s *PaymentService) RegisterPayment(ctx context.Context, input *RegisterPaymentInput) (*entity.Payment, error) {
	s.locks.Lock(input.InvoiceID.String())
	defer s.locks.Unlock(input.InvoiceID.String())

	invoice, err := s.invoiceRepo.GetWithRelations(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err := s.validatePayment(invoice, input); err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(invoice.Balance) && !input.ConfirmOverpayment {
		return nil, apperror.ErrOverpaymentConfirmationRequired
	}

	// When a cash movement may be posted, hold the box lock for the whole
	// commit so a session close cannot interleave between the open-session
	// check and the movement landing. The close path takes only the box
	// lock, so the invoice-then-box ordering cannot deadlock.
	if input.CashBoxID != nil && input.Method.AffectsCashFloat() {
		s.locks.Lock(input.CashBoxID.String())
		defer s.locks.Unlock(input.CashBoxID.String())
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	payment := &entity.Payment{
		InvoiceID:  invoice.ID,
		Amount:     input.Amount,
		Method:     input.Method,
		Reference:  input.Reference,
		Date:       date,
		Notes:      input.Notes,
		CashBoxID:  input.CashBoxID,
		ReceivedBy: input.ReceivedBy,
		Status:     enum.PaymentStatusConfirmed,
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		movementID, err := s.postCashMovement(ctx, invoice, payment)
		if err != nil {
			return err
		}
		payment.CashMovementID = movementID

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		invoice.Payments = append(invoice.Payments, *payment)
		if err := invoice.Recalculate(); err != nil {
			return err
		}
		invoice.Status = statusForBalance(invoice.Balance)
		return s.invoiceRepo.Save(ctx, invoice)
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("payment_id", payment.ID.String()).
		Str("amount", payment.Amount.String()).
		Str("balance", invoice.Balance.String()).
		Str("status", string(invoice.Status)).
		Msg("payment registered")

	return payment, nil
}

// ListPayments returns the payments registered against an invoice
func (s *PaymentService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}

// GetPayment retrieves a single payment
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

func (s *PaymentService) validatePayment(invoice *entity.Invoice, input *RegisterPaymentInput) error {
	if !invoice.Status.Payable() {
		return apperror.NewInvalidStateError("payments can only be registered against issued or partially paid invoices")
	}
	if !input.Amount.IsPositive() {
		return apperror.NewFieldError("amount", "must be greater than zero")
	}
	if !input.Method.IsValid() {
		return apperror.NewFieldError("method", "unknown payment method")
	}
	if input.Method.RequiresReference() && input.Reference == "" {
		return apperror.NewFieldError("reference", "required for card and transfer payments")
	}
	if input.ReceivedBy == uuid.Nil {
		return apperror.NewFieldError("received_by", "must identify the receiving user")
	}
	return nil
}

// postCashMovement posts a SALE movement to the cash box's open session
// for float-affecting methods and returns its id. A box without an open
// session is skipped, not an error: the payment itself stands on its
// own. The caller must hold the box lock.
func (s *PaymentService) postCashMovement(ctx context.Context, invoice *entity.Invoice, payment *entity.Payment) (*uuid.UUID, error) {
	if payment.CashBoxID == nil || !payment.Method.AffectsCashFloat() {
		return nil, nil
	}

	box, err := s.cashBoxRepo.GetByID(ctx, *payment.CashBoxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	if box.Status != enum.CashBoxStatusOpen || box.CurrentSessionID == nil {
		s.log.Warn().
			Str("cashbox_id", box.ID.String()).
			Str("invoice_id", invoice.ID.String()).
			Msg("cash payment received while box has no open session; no movement posted")
		return nil, nil
	}

	reference := invoice.ID.String()
	if invoice.Number != nil {
		reference = *invoice.Number
	}
	movement := &entity.CashBoxMovement{
		SessionID: *box.CurrentSessionID,
		Type:      enum.MovementTypeSale,
		Amount:    payment.Amount,
		Reference: reference,
		UserID:    payment.ReceivedBy,
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return &movement.ID, nil
}

// statusForBalance maps a recomputed balance to the invoice status,
// treating anything within the tolerance of zero (or below) as paid.
func statusForBalance(balance decimal.Decimal) enum.InvoiceStatus {
	if balance.LessThanOrEqual(paidTolerance) {
		return enum.InvoiceStatusPaid
	}
	return enum.InvoiceStatusPartiallyPaid
}
