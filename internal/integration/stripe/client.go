package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/ticketpulse/adwallet/internal/config"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
)

const (
	metadataInvoiceID      = "adwallet_invoice_id"
	metadataWalletID       = "adwallet_wallet_id"
	metadataCredits        = "adwallet_credits"
	metadataIdempotencyKey = "adwallet_idempotency_key"
)

// Client implements Gateway against the Stripe API
type Client struct {
	client *stripe.Client
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewClient creates a Stripe-backed payment gateway
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		client: stripe.NewClient(cfg.Stripe.SecretKey, nil),
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCheckoutSession creates a Stripe checkout session for a pending invoice
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	// The reconciler recovers full purchase context from the event alone,
	// so everything it needs rides along as session metadata
	metadata := map[string]string{
		metadataInvoiceID:      req.InvoiceID,
		metadataWalletID:       req.WalletID,
		metadataCredits:        strconv.FormatInt(req.Credits, 10),
		metadataIdempotencyKey: req.IdempotencyKey,
		"payment_source":       "adwallet",
	}

	params := &stripe.CheckoutSessionCreateParams{
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%d ad credits", req.Credits)),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountUSDCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String("payment"),
		SuccessURL: stripe.String(c.cfg.Stripe.SuccessURL),
		CancelURL:  stripe.String(c.cfg.Stripe.CancelURL),
		Metadata:   metadata,
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	// Retrying a failed session creation with the same invoice reuses the
	// processor-side session instead of opening a second one
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)

	session, err := c.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe checkout session",
			"error", err,
			"invoice_id", req.InvoiceID)
		return nil, ierr.NewError("failed to create checkout session").
			WithHint("Payment processor rejected the checkout session").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": req.InvoiceID,
			}).
			Mark(ierr.ErrProcessorUnavailable)
	}

	return &CheckoutSession{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// VerifyWebhook verifies the Stripe signature and normalizes the event
func (c *Client) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.Stripe.WebhookSecret, options)
	if err != nil {
		c.logger.Errorw("Stripe webhook verification failed", "error", err)
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrSignatureInvalid)
	}

	return c.normalizeEvent(&event)
}

func (c *Client) normalizeEvent(event *stripe.Event) (*Event, error) {
	out := &Event{
		ID:   event.ID,
		Type: EventIgnored,
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed checkout session payload").
				Mark(ierr.ErrValidation)
		}
		out.Type = EventPaymentCompleted
		out.SessionID = session.ID
		out.InvoiceID = session.Metadata[metadataInvoiceID]
		if session.PaymentIntent != nil {
			out.PaymentID = session.PaymentIntent.ID
			if session.PaymentIntent.LatestCharge != nil {
				out.ReceiptURL = session.PaymentIntent.LatestCharge.ReceiptURL
			}
		}

	case "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed checkout session payload").
				Mark(ierr.ErrValidation)
		}
		out.Type = EventPaymentFailed
		out.SessionID = session.ID
		out.InvoiceID = session.Metadata[metadataInvoiceID]

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed charge payload").
				Mark(ierr.ErrValidation)
		}
		out.Type = EventRefund
		out.AmountRefundedCents = charge.AmountRefunded
		out.InvoiceID = charge.Metadata[metadataInvoiceID]
		if charge.PaymentIntent != nil {
			out.PaymentID = charge.PaymentIntent.ID
		}

	case "charge.dispute.created":
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed dispute payload").
				Mark(ierr.ErrValidation)
		}
		out.Type = EventDispute
		if dispute.PaymentIntent != nil {
			out.PaymentID = dispute.PaymentIntent.ID
		}

	default:
		c.logger.Debugw("ignoring unhandled Stripe event type", "type", event.Type)
	}

	return out, nil
}
