package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
)

// IdempotencyRepository stores request idempotency keys so retried
// payment registrations replay the original response instead of
// committing twice.
type IdempotencyRepository interface {
	// GetByKey looks up a key scoped to the acting user
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired purges keys past their TTL
	DeleteExpired(ctx context.Context) error
}
