package service

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/idempotency"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
	"github.com/ticketpulse/adwallet/internal/types"
)

// WebhookService is the reconciler: verified processor events are the only
// path that grants purchased credits, claws back refunds or reacts to
// disputes. Every handler tolerates redelivery.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error)
}

type webhookService struct {
	ServiceParams
}

// NewWebhookService creates a new webhook service
func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{ServiceParams: params}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error) {
	event, err := s.Gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	result := &dto.WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	switch event.Type {
	case stripe.EventPaymentCompleted:
		err = s.handlePaymentCompleted(ctx, event, result)
	case stripe.EventPaymentFailed:
		err = s.handlePaymentFailed(ctx, event, result)
	case stripe.EventRefund:
		err = s.handleRefund(ctx, event, result)
	case stripe.EventDispute:
		err = s.handleDispute(ctx, event, result)
	default:
		result.Handled = true
		result.Reason = "event type not relevant"
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findInvoice resolves the invoice an event refers to, preferring our own
// metadata over processor identifiers
func (s *webhookService) findInvoice(ctx context.Context, event *stripe.Event) (*invoice.Invoice, error) {
	if event.InvoiceID != "" {
		return s.InvoiceRepo.GetByID(ctx, event.InvoiceID)
	}
	if event.SessionID != "" {
		return s.InvoiceRepo.GetByProcessorSessionID(ctx, event.SessionID)
	}
	if event.PaymentID != "" {
		return s.InvoiceRepo.GetByProcessorPaymentID(ctx, event.PaymentID)
	}
	return nil, ierr.NewError("event carries no invoice reference").
		WithHint("Unable to correlate event with an invoice").
		Mark(ierr.ErrNotFound)
}

func (s *webhookService) handlePaymentCompleted(ctx context.Context, event *stripe.Event, result *dto.WebhookResult) error {
	inv, err := s.findInvoice(ctx, event)
	if err != nil {
		return err
	}
	result.InvoiceID = inv.ID
	result.WalletID = inv.WalletID

	if inv.IsPaid() {
		result.Handled = true
		result.Reason = "invoice already paid"
		return nil
	}

	walletSvc := NewWalletService(s.ServiceParams)
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.InvoiceRepo.MarkPaid(txCtx, inv.ID, event.ReceiptURL); err != nil {
			return err
		}
		if event.PaymentID != "" && event.PaymentID != inv.ProcessorPaymentID {
			if err := s.InvoiceRepo.UpdateProcessorRefs(txCtx, inv.ID, inv.ProcessorSessionID, event.PaymentID); err != nil {
				return err
			}
		}

		amount := inv.AmountUSDCents
		// The invoice's own idempotency key seeds the grant, so a delivery
		// racing a redelivery still grants exactly once
		_, _, err := walletSvc.CreditWallet(txCtx, &WalletOperation{
			WalletID:       inv.WalletID,
			Credits:        inv.CreditsPurchased,
			Type:           types.TransactionTypePurchase,
			AmountUSDCents: &amount,
			ReferenceType:  types.WalletTxReferenceTypeInvoice,
			ReferenceID:    inv.ID,
			IdempotencyKey: inv.IdempotencyKey,
			Memo:           "credit purchase " + inv.InvoiceNumber,
		})
		return err
	})
	if err != nil {
		// Raced a redelivery that won the paid transition
		if ierr.IsInvalidOperation(err) {
			result.Handled = true
			result.Reason = "invoice already settled"
			return nil
		}
		return err
	}

	s.Logger.Infow("granted purchased credits",
		"invoice_id", inv.ID,
		"wallet_id", inv.WalletID,
		"credits", inv.CreditsPurchased,
	)
	result.Handled = true
	return nil
}

func (s *webhookService) handlePaymentFailed(ctx context.Context, event *stripe.Event, result *dto.WebhookResult) error {
	inv, err := s.findInvoice(ctx, event)
	if err != nil {
		return err
	}
	result.InvoiceID = inv.ID
	result.WalletID = inv.WalletID

	if err := s.InvoiceRepo.MarkFailed(ctx, inv.ID); err != nil {
		return err
	}
	result.Handled = true
	return nil
}

func (s *webhookService) handleRefund(ctx context.Context, event *stripe.Event, result *dto.WebhookResult) error {
	inv, err := s.findInvoice(ctx, event)
	if err != nil {
		return err
	}
	result.InvoiceID = inv.ID
	result.WalletID = inv.WalletID

	if !inv.IsPaid() {
		result.Handled = true
		result.Reason = "refund for an unpaid invoice, nothing to claw back"
		return nil
	}

	// The processor reports the cumulative total refunded on the charge, not
	// the individual refund's amount. Claw back only the delta between the
	// cumulative target and what earlier refund events already took.
	target := inv.RefundCredits(event.AmountRefundedCents)
	clawedBack, err := s.WalletRepo.SumCreditsByReference(ctx, inv.WalletID, types.TransactionTypeRefund, types.WalletTxReferenceTypeInvoice, inv.ID)
	if err != nil {
		return err
	}
	credits := target + clawedBack // refund deltas are negative
	if credits <= 0 {
		result.Handled = true
		result.Reason = "refund already clawed back"
		return nil
	}

	// Keyed by the processor event so a redelivery racing the sum above
	// still claws back exactly once
	key := s.IdempotencyGen.GenerateKey(idempotency.ScopeRefund, map[string]interface{}{
		"event_id":   event.ID,
		"invoice_id": inv.ID,
	})

	amount := event.AmountRefundedCents
	walletSvc := NewWalletService(s.ServiceParams)
	_, duplicate, err := walletSvc.DebitWallet(ctx, &WalletOperation{
		WalletID:       inv.WalletID,
		Credits:        credits,
		Type:           types.TransactionTypeRefund,
		AmountUSDCents: &amount,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    inv.ID,
		IdempotencyKey: key,
		Memo:           "refund claw-back " + inv.InvoiceNumber,
		AllowNegative:  true,
	})
	if err != nil {
		return err
	}

	if !duplicate {
		// The refund path recomputes from the full ledger rather than
		// trusting the cached balance, and freezes on the recomputed value
		recon, err := walletSvc.ReconcileBalance(ctx, inv.WalletID)
		if err != nil {
			return err
		}
		if recon.BalanceCredits < 0 {
			if err := walletSvc.SetWalletStatus(ctx, inv.WalletID, types.WalletStatusFrozen, "refund drove balance negative"); err != nil {
				return err
			}
		}
		s.Logger.Infow("clawed back refunded credits",
			"invoice_id", inv.ID,
			"wallet_id", inv.WalletID,
			"credits", credits,
			"amount_refunded_cents", event.AmountRefundedCents,
		)
	}
	result.Handled = true
	return nil
}

func (s *webhookService) handleDispute(ctx context.Context, event *stripe.Event, result *dto.WebhookResult) error {
	inv, err := s.findInvoice(ctx, event)
	if err != nil {
		return err
	}
	result.InvoiceID = inv.ID
	result.WalletID = inv.WalletID

	// Disputes freeze immediately, before any chargeback settles
	walletSvc := NewWalletService(s.ServiceParams)
	if err := walletSvc.SetWalletStatus(ctx, inv.WalletID, types.WalletStatusFrozen, "payment dispute on "+inv.InvoiceNumber); err != nil {
		return err
	}
	result.Handled = true
	return nil
}
