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

// CashBoxService owns the cash box registry and the session ledger:
// opening, movement appends and close reconciliation.
type CashBoxService struct {
	cashBoxRepo  repository.CashBoxRepository
	sessionRepo  repository.CashBoxSessionRepository
	movementRepo repository.CashBoxMovementRepository
	tx           repository.Transactor
	locks        *keyedmutex.KeyedMutex
	log          zerolog.Logger
}

// NewCashBoxService creates a new cash box service
func NewCashBoxService(
	cashBoxRepo repository.CashBoxRepository,
	sessionRepo repository.CashBoxSessionRepository,
	movementRepo repository.CashBoxMovementRepository,
	tx repository.Transactor,
	locks *keyedmutex.KeyedMutex,
	log zerolog.Logger,
) *CashBoxService {
	return &CashBoxService{
		cashBoxRepo:  cashBoxRepo,
		sessionRepo:  sessionRepo,
		movementRepo: movementRepo,
		tx:           tx,
		locks:        locks,
		log:          log,
	}
}

// CreateCashBoxInput represents the create cash box input
type CreateCashBoxInput struct {
	Code                   string
	Name                   string
	Location               string
	AssignedUserID         *uuid.UUID
	RequiresOpeningClosing bool
}

// CreateCashBox registers a new cash box in CLOSED status
func (s *CashBoxService) CreateCashBox(ctx context.Context, input *CreateCashBoxInput) (*entity.CashBox, error) {
	var fields []apperror.FieldError
	if input.Code == "" {
		fields = append(fields, apperror.FieldError{Field: "code", Message: "must not be empty"})
	}
	if input.Name == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "must not be empty"})
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidationError(fields)
	}

	existing, err := s.cashBoxRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrConflict
	}

	box := &entity.CashBox{
		Code:                   input.Code,
		Name:                   input.Name,
		Location:               input.Location,
		Status:                 enum.CashBoxStatusClosed,
		AssignedUserID:         input.AssignedUserID,
		RequiresOpeningClosing: input.RequiresOpeningClosing,
	}
	if err := s.cashBoxRepo.Create(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// GetCashBox retrieves a cash box with its current session, if any
func (s *CashBoxService) GetCashBox(ctx context.Context, id uuid.UUID) (*entity.CashBox, error) {
	box, err := s.cashBoxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	if box.CurrentSessionID != nil {
		session, err := s.sessionRepo.GetWithMovements(ctx, *box.CurrentSessionID)
		if err != nil {
			return nil, err
		}
		box.CurrentSession = session
	}
	return box, nil
}

// ListCashBoxes lists cash boxes
func (s *CashBoxService) ListCashBoxes(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CashBox], error) {
	boxes, total, err := s.cashBoxRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(boxes, pag), nil
}

// OpenSession opens a new session on a closed cash box. The status flip
// is a check-and-set so two concurrent opens cannot both succeed.
func (s *CashBoxService) OpenSession(ctx context.Context, cashBoxID uuid.UUID, initialAmount decimal.Decimal, userID uuid.UUID, note string) (*entity.CashBoxSession, error) {
	if initialAmount.IsNegative() {
		return nil, apperror.NewFieldError("initial_amount", "must not be negative")
	}
	if userID == uuid.Nil {
		return nil, apperror.NewFieldError("user_id", "must identify the opening user")
	}

	s.locks.Lock(cashBoxID.String())
	defer s.locks.Unlock(cashBoxID.String())

	box, err := s.cashBoxRepo.GetByID(ctx, cashBoxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	if box.Status == enum.CashBoxStatusOpen {
		return nil, apperror.NewInvalidStateError("cash box already has an open session")
	}

	session := &entity.CashBoxSession{
		CashBoxID:      box.ID,
		OpenedAt:       time.Now(),
		OpenedByUserID: userID,
		InitialAmount:  initialAmount,
		OpeningNote:    note,
	}

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return err
		}
		if initialAmount.IsPositive() {
			err := s.movementRepo.Create(ctx, &entity.CashBoxMovement{
				SessionID: session.ID,
				Type:      enum.MovementTypeOpening,
				Amount:    initialAmount,
				Note:      note,
				UserID:    userID,
			})
			if err != nil {
				return err
			}
		}
		ok, err := s.cashBoxRepo.SetStatus(ctx, box.ID, enum.CashBoxStatusClosed, enum.CashBoxStatusOpen, &session.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewInvalidStateError("cash box already has an open session")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("cashbox_id", box.ID.String()).
		Str("session_id", session.ID.String()).
		Str("initial_amount", initialAmount.String()).
		Msg("cash session opened")

	return session, nil
}

// AddMovement appends a movement to the open session of a cash box.
// The amount is always positive; the type implies the direction.
func (s *CashBoxService) AddMovement(ctx context.Context, cashBoxID uuid.UUID, movementType enum.MovementType, amount decimal.Decimal, reference, note string, userID uuid.UUID) (*entity.CashBoxMovement, error) {
	if !movementType.IsValid() || !movementType.Manual() {
		return nil, apperror.NewFieldError("type", "unknown or reserved movement type")
	}
	if !amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "must be greater than zero")
	}
	if userID == uuid.Nil {
		return nil, apperror.NewFieldError("user_id", "must identify the posting user")
	}

	s.locks.Lock(cashBoxID.String())
	defer s.locks.Unlock(cashBoxID.String())

	box, err := s.cashBoxRepo.GetByID(ctx, cashBoxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	if box.Status != enum.CashBoxStatusOpen || box.CurrentSessionID == nil {
		return nil, apperror.NewInvalidStateError("cash box has no open session")
	}

	movement := &entity.CashBoxMovement{
		SessionID: *box.CurrentSessionID,
		Type:      movementType,
		Amount:    amount,
		Reference: reference,
		Note:      note,
		UserID:    userID,
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// CloseSession seals the open session of a cash box: it computes the
// expected float, records the counted amount and the difference, and
// returns the box to CLOSED. Taking the box lock orders the close after
// every in-flight movement append. No movement can be added afterwards.
func (s *CashBoxService) CloseSession(ctx context.Context, cashBoxID uuid.UUID, countedAmount decimal.Decimal, userID uuid.UUID, note string) (*entity.CashBoxSession, error) {
	if countedAmount.IsNegative() {
		return nil, apperror.NewFieldError("counted_amount", "must not be negative")
	}
	if userID == uuid.Nil {
		return nil, apperror.NewFieldError("user_id", "must identify the closing user")
	}

	s.locks.Lock(cashBoxID.String())
	defer s.locks.Unlock(cashBoxID.String())

	box, err := s.cashBoxRepo.GetByID(ctx, cashBoxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	if box.Status != enum.CashBoxStatusOpen || box.CurrentSessionID == nil {
		return nil, apperror.NewInvalidStateError("cash box has no open session")
	}

	session, err := s.sessionRepo.GetWithMovements(ctx, *box.CurrentSessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFoundError("Cash box session")
	}
	if session.IsClosed() {
		return nil, apperror.NewInvalidStateError("session is already closed")
	}

	now := time.Now()
	expected := session.ComputeExpected()
	difference := countedAmount.Sub(expected)

	session.ClosedAt = &now
	session.ClosedByUserID = &userID
	session.CountedAmount = &countedAmount
	session.ExpectedAmount = &expected
	session.Difference = &difference
	session.ClosingNote = note

	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if countedAmount.IsPositive() {
			err := s.movementRepo.Create(ctx, &entity.CashBoxMovement{
				SessionID: session.ID,
				Type:      enum.MovementTypeClosing,
				Amount:    countedAmount,
				Note:      note,
				UserID:    userID,
			})
			if err != nil {
				return err
			}
		}
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return err
		}
		ok, err := s.cashBoxRepo.SetStatus(ctx, box.ID, enum.CashBoxStatusOpen, enum.CashBoxStatusClosed, nil)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewInvalidStateError("cash box has no open session")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("cashbox_id", box.ID.String()).
		Str("session_id", session.ID.String()).
		Str("expected", expected.String()).
		Str("counted", countedAmount.String()).
		Str("difference", difference.String()).
		Msg("cash session closed")

	return session, nil
}

// GetSession retrieves a session with its movement ledger
func (s *CashBoxService) GetSession(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error) {
	session, err := s.sessionRepo.GetWithMovements(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewNotFoundError("Cash box session")
	}
	return session, nil
}

// ListSessions returns the session history of a cash box
func (s *CashBoxService) ListSessions(ctx context.Context, cashBoxID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.CashBoxSession], error) {
	box, err := s.cashBoxRepo.GetByID(ctx, cashBoxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, apperror.NewNotFoundError("Cash box")
	}
	sessions, total, err := s.sessionRepo.ListByCashBox(ctx, cashBoxID, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(sessions, pag), nil
}
