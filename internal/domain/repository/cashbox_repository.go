package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
)

// CashBoxRepository defines the interface for cash box data operations
type CashBoxRepository interface {
	Create(ctx context.Context, box *entity.CashBox) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBox, error)
	GetByCode(ctx context.Context, code string) (*entity.CashBox, error)
	Update(ctx context.Context, box *entity.CashBox) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.CashBox, int64, error)
	// SetStatus conditionally flips the box status, returning false when
	// the box was not in the expected status. This is the check-and-set
	// that guarantees at most one open session per box.
	SetStatus(ctx context.Context, id uuid.UUID, from, to enum.CashBoxStatus, sessionID *uuid.UUID) (bool, error)
}

// CashBoxSessionRepository defines the interface for session data operations
type CashBoxSessionRepository interface {
	Create(ctx context.Context, session *entity.CashBoxSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error)
	// GetWithMovements loads the session with its full movement ledger.
	GetWithMovements(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error)
	Save(ctx context.Context, session *entity.CashBoxSession) error
	ListByCashBox(ctx context.Context, cashBoxID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashBoxSession, int64, error)
}

// CashBoxMovementRepository defines the interface for movement appends.
// Movements are append-only.
type CashBoxMovementRepository interface {
	Create(ctx context.Context, movement *entity.CashBoxMovement) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.CashBoxMovement, error)
}
