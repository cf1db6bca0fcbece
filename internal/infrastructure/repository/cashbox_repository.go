package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	domainRepo "github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/pkg/pagination"
	"gorm.io/gorm"
)

type cashBoxRepository struct {
	db *gorm.DB
}

// NewCashBoxRepository creates a new cash box repository
func NewCashBoxRepository(db *gorm.DB) domainRepo.CashBoxRepository {
	return &cashBoxRepository{db: db}
}

func (r *cashBoxRepository) Create(ctx context.Context, box *entity.CashBox) error {
	return dbFrom(ctx, r.db).Omit("CurrentSession", "Sessions").Create(box).Error
}

func (r *cashBoxRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBox, error) {
	var box entity.CashBox
	err := dbFrom(ctx, r.db).First(&box, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *cashBoxRepository) GetByCode(ctx context.Context, code string) (*entity.CashBox, error) {
	var box entity.CashBox
	err := dbFrom(ctx, r.db).First(&box, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (r *cashBoxRepository) Update(ctx context.Context, box *entity.CashBox) error {
	return dbFrom(ctx, r.db).Omit("CurrentSession", "Sessions").Save(box).Error
}

func (r *cashBoxRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.CashBox, int64, error) {
	var boxes []entity.CashBox
	var total int64

	query := dbFrom(ctx, r.db).Model(&entity.CashBox{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("code ASC").
		Find(&boxes).Error

	return boxes, total, err
}

// SetStatus flips the box status only when the row still carries the
// expected current status. A zero row count means another writer won
// the race and the caller must treat the box as already transitioned.
func (r *cashBoxRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to enum.CashBoxStatus, sessionID *uuid.UUID) (bool, error) {
	res := dbFrom(ctx, r.db).Model(&entity.CashBox{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":             to,
			"current_session_id": sessionID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type cashBoxSessionRepository struct {
	db *gorm.DB
}

// NewCashBoxSessionRepository creates a new session repository
func NewCashBoxSessionRepository(db *gorm.DB) domainRepo.CashBoxSessionRepository {
	return &cashBoxSessionRepository{db: db}
}

func (r *cashBoxSessionRepository) Create(ctx context.Context, session *entity.CashBoxSession) error {
	return dbFrom(ctx, r.db).Omit("Movements").Create(session).Error
}

func (r *cashBoxSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error) {
	var session entity.CashBoxSession
	err := dbFrom(ctx, r.db).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *cashBoxSessionRepository) GetWithMovements(ctx context.Context, id uuid.UUID) (*entity.CashBoxSession, error) {
	var session entity.CashBoxSession
	err := dbFrom(ctx, r.db).
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *cashBoxSessionRepository) Save(ctx context.Context, session *entity.CashBoxSession) error {
	return dbFrom(ctx, r.db).Omit("Movements").Save(session).Error
}

func (r *cashBoxSessionRepository) ListByCashBox(ctx context.Context, cashBoxID uuid.UUID, params *pagination.PaginationParams) ([]entity.CashBoxSession, int64, error) {
	var sessions []entity.CashBoxSession
	var total int64

	query := dbFrom(ctx, r.db).Model(&entity.CashBoxSession{}).
		Where("cash_box_id = ?", cashBoxID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("opened_at DESC").
		Find(&sessions).Error

	return sessions, total, err
}

type cashBoxMovementRepository struct {
	db *gorm.DB
}

// NewCashBoxMovementRepository creates a new movement repository
func NewCashBoxMovementRepository(db *gorm.DB) domainRepo.CashBoxMovementRepository {
	return &cashBoxMovementRepository{db: db}
}

func (r *cashBoxMovementRepository) Create(ctx context.Context, movement *entity.CashBoxMovement) error {
	return dbFrom(ctx, r.db).Create(movement).Error
}

func (r *cashBoxMovementRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.CashBoxMovement, error) {
	var movements []entity.CashBoxMovement
	err := dbFrom(ctx, r.db).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
