package postgres

import (
	"context"
)

// IClient is the database surface the service layer depends on. The sqlx-backed
// DB implements it for production; tests substitute a pass-through client.
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)
