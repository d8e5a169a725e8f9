package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
)

var _ stripe.Gateway = (*FakeProcessorGateway)(nil)

// FakeProcessorGateway is a scriptable payment gateway for tests. Set
// FailCheckout to simulate processor outages; queue events with PushEvent to
// script webhook deliveries.
type FakeProcessorGateway struct {
	mu sync.Mutex

	FailCheckout  bool
	sessionSerial int
	events        map[string]*stripe.Event

	// CheckoutRequests records every session request in order
	CheckoutRequests []*stripe.CheckoutSessionRequest
}

func NewFakeProcessorGateway() *FakeProcessorGateway {
	return &FakeProcessorGateway{
		events: make(map[string]*stripe.Event),
	}
}

func (g *FakeProcessorGateway) CreateCheckoutSession(ctx context.Context, req *stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailCheckout {
		return nil, ierr.NewError("processor rejected the session").
			WithHint("Payment processor rejected the checkout session").
			Mark(ierr.ErrProcessorUnavailable)
	}

	g.CheckoutRequests = append(g.CheckoutRequests, req)
	g.sessionSerial++
	sessionID := fmt.Sprintf("cs_test_%d", g.sessionSerial)
	return &stripe.CheckoutSession{
		SessionID:   sessionID,
		CheckoutURL: "https://checkout.test/" + sessionID,
	}, nil
}

// PushEvent registers an event payload; VerifyWebhook resolves the payload
// string to the registered event when the signature matches
func (g *FakeProcessorGateway) PushEvent(payload string, event *stripe.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events[payload] = event
}

func (g *FakeProcessorGateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if signature != "valid" {
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrSignatureInvalid)
	}

	if event, ok := g.events[string(payload)]; ok {
		copied := *event
		return &copied, nil
	}
	return nil, ierr.NewError("unknown webhook payload").
		WithHint("Invalid webhook signature or payload").
		Mark(ierr.ErrValidation)
}
