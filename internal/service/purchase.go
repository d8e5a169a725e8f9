package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
	"github.com/ticketpulse/adwallet/internal/types"
)

// PurchaseService turns purchase requests into pending invoices and hosted
// checkout sessions. Credits are never granted here; only the webhook
// reconciler grants them once payment is verified.
type PurchaseService interface {
	Purchase(ctx context.Context, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error)
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)
}

type purchaseService struct {
	ServiceParams
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(params ServiceParams) PurchaseService {
	return &purchaseService{ServiceParams: params}
}

func (s *purchaseService) Purchase(ctx context.Context, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Replay returns the invoice's current state without creating anything
	if existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
		return dto.NewPurchaseCreditsResponse(existing, "", true), nil
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	priceCents, credits, err := s.resolvePricing(ctx, req)
	if err != nil {
		return nil, err
	}

	promoCode := ""
	if req.PromoCode != "" {
		promo, err := s.CatalogRepo.GetPromo(ctx, req.PromoCode)
		if err != nil {
			return nil, err
		}
		priceCents, credits = promo.Apply(priceCents, credits)
		promoCode = promo.Code
	}

	walletSvc := NewWalletService(s.ServiceParams)
	w, err := walletSvc.GetOrCreateWallet(ctx, types.WalletOwner{Type: req.OwnerType, ID: req.OwnerID})
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE_NUMBER),
		WalletID:         w.ID,
		AmountUSDCents:   priceCents,
		CreditsPurchased: credits,
		PromoCode:        promoCode,
		InvoiceStatus:    types.InvoiceStatusPending,
		IdempotencyKey:   req.IdempotencyKey,
		PurchasedBy:      types.GetUserID(ctx),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		// Lost the insert race to a concurrent request with the same key
		if ierr.IsAlreadyExists(err) {
			existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
			if err != nil {
				return nil, err
			}
			return dto.NewPurchaseCreditsResponse(existing, "", true), nil
		}
		return nil, err
	}

	session, err := s.openCheckoutSession(ctx, inv)
	if err != nil {
		if markErr := s.InvoiceRepo.MarkFailed(ctx, inv.ID); markErr != nil {
			s.Logger.Errorw("failed to mark invoice failed",
				"error", markErr,
				"invoice_id", inv.ID,
			)
		}
		return nil, err
	}

	if err := s.InvoiceRepo.UpdateProcessorRefs(ctx, inv.ID, session.SessionID, ""); err != nil {
		return nil, err
	}
	inv.ProcessorSessionID = session.SessionID

	s.Logger.Infow("created purchase invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"wallet_id", w.ID,
		"amount_usd_cents", priceCents,
		"credits_purchased", credits,
	)
	return dto.NewPurchaseCreditsResponse(inv, session.CheckoutURL, false), nil
}

// resolvePricing returns the pre-promo price and credits for the request
func (s *purchaseService) resolvePricing(ctx context.Context, req *dto.PurchaseCreditsRequest) (int64, int64, error) {
	if req.PackageID != "" {
		pkg, err := s.CatalogRepo.GetPackage(ctx, req.PackageID)
		if err != nil {
			return 0, 0, err
		}
		return pkg.PriceUSDCents, pkg.Credits, nil
	}

	min := s.Config.Wallet.MinCustomCredits
	if req.CustomCredits < min {
		return 0, 0, ierr.NewError("custom credit amount below minimum").
			WithHint(fmt.Sprintf("Custom purchases start at %d credits", min)).
			WithReportableDetails(map[string]interface{}{
				"custom_credits": req.CustomCredits,
				"minimum":        min,
			}).
			Mark(ierr.ErrValidation)
	}
	return req.CustomCredits * s.Config.Wallet.CustomCreditPriceCents, req.CustomCredits, nil
}

// openCheckoutSession calls the processor behind its circuit breaker
func (s *purchaseService) openCheckoutSession(ctx context.Context, inv *invoice.Invoice) (*stripe.CheckoutSession, error) {
	b := s.Breakers.For(breaker.ServicePaymentProcessor)
	if !b.CanProceed() {
		return nil, ierr.NewError("payment processor unavailable").
			WithHint("Payments are temporarily unavailable, try again shortly").
			Mark(ierr.ErrProcessorUnavailable)
	}

	session, err := s.Gateway.CreateCheckoutSession(ctx, &stripe.CheckoutSessionRequest{
		InvoiceID:      inv.ID,
		WalletID:       inv.WalletID,
		Credits:        inv.CreditsPurchased,
		AmountUSDCents: inv.AmountUSDCents,
		Description:    fmt.Sprintf("Ad credits purchase %s", inv.InvoiceNumber),
		IdempotencyKey: inv.IdempotencyKey,
	})
	if err != nil {
		b.RecordFailure(err.Error())
		return nil, err
	}

	b.RecordSuccess()
	return session, nil
}

func (s *purchaseService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Provide an invoice id").
			Mark(ierr.ErrValidation)
	}
	return s.InvoiceRepo.GetByID(ctx, id)
}
