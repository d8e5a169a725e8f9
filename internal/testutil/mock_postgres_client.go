package testutil

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// txRestorer is implemented by in-memory stores that can snapshot their
// state and hand back a restore function.
type txRestorer interface {
	snapshot() func()
}

// MockPostgresClient is a mock implementation of postgres client for testing.
// WithTx snapshots the registered stores before running the function and
// restores them when it fails, mirroring a real transaction rollback.
type MockPostgresClient struct {
	logger    *logger.Logger
	restorers []txRestorer
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger, restorers ...txRestorer) postgres.IClient {
	return &MockPostgresClient{logger: logger, restorers: restorers}
}

// WithTx executes the given function within a pretend transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	restores := make([]func(), 0, len(c.restorers))
	for _, r := range c.restorers {
		restores = append(restores, r.snapshot())
	}

	if err := fn(ctx); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}
