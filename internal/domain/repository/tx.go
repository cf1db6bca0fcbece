package repository

import "context"

// Transactor runs a function inside a single storage transaction. Every
// repository call made with the context passed to fn joins that
// transaction, so a mutating operation either commits all of its writes
// or none of them.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
