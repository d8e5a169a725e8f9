package stripe

import (
	"context"
)

// EventType classifies processor webhook events the engine reacts to
type EventType string

const (
	EventPaymentCompleted EventType = "payment_completed"
	EventPaymentFailed    EventType = "payment_failed"
	EventRefund           EventType = "refund"
	EventDispute          EventType = "dispute"
	EventIgnored          EventType = "ignored"
)

// CheckoutSessionRequest carries everything needed to open a hosted
// checkout session for a pending invoice
type CheckoutSessionRequest struct {
	InvoiceID      string
	WalletID       string
	Credits        int64
	AmountUSDCents int64
	Description    string
	IdempotencyKey string
}

// CheckoutSession is the processor-side session created for an invoice
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// Event is a processor webhook event normalized to the engine's vocabulary.
// InvoiceID comes from session metadata and may be empty for events the
// processor originates without our metadata attached.
type Event struct {
	ID                  string
	Type                EventType
	SessionID           string
	PaymentID           string
	InvoiceID           string
	ReceiptURL          string
	// AmountRefundedCents is the cumulative total refunded on the charge,
	// not the delta of the latest refund
	AmountRefundedCents int64
}

// Gateway abstracts the payment processor so services and tests do not
// depend on processor SDK types
type Gateway interface {
	// CreateCheckoutSession opens a hosted checkout session for the invoice
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	// VerifyWebhook checks the payload signature and normalizes the event
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
