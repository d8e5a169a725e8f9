package invoice

import (
	"context"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*Invoice, error)
	GetByProcessorSessionID(ctx context.Context, sessionID string) (*Invoice, error)
	GetByProcessorPaymentID(ctx context.Context, paymentID string) (*Invoice, error)

	// UpdateProcessorRefs persists the checkout session and payment identifiers
	// returned by the processor onto a pending invoice.
	UpdateProcessorRefs(ctx context.Context, id, sessionID, paymentID string) error

	// MarkPaid transitions pending -> paid and records the receipt URL. It is
	// a guarded transition: an invoice already paid or failed is left
	// untouched and the call fails with ErrInvalidOperation.
	MarkPaid(ctx context.Context, id, receiptURL string) error
	MarkFailed(ctx context.Context, id string) error
}
