package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/domain/adspend"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/frequency"
	"github.com/ticketpulse/adwallet/internal/idempotency"
	"github.com/ticketpulse/adwallet/internal/types"
)

const (
	// Per-viewer impression cap over a rolling window. Delivery is expected
	// to stop serving a viewer once the cap is hit; charges past it are
	// flagged in the response but still stand.
	defaultFrequencyCapLimit  = 10
	defaultFrequencyCapWindow = time.Hour
)

// SpendService charges metered ad usage against prepaid wallets
type SpendService interface {
	// Charge converts a usage report into credits and debits the wallet.
	// Exactly-once per idempotency key; a frozen wallet or insufficient
	// balance rejects the whole charge, partial charges never happen.
	Charge(ctx context.Context, req *dto.ChargeSpendRequest) (*dto.ChargeSpendResponse, error)

	// ListCampaignSpend returns the metering audit trail for a campaign
	ListCampaignSpend(ctx context.Context, campaignID string, limit, offset int) ([]*adspend.LedgerEntry, error)
}

type spendService struct {
	ServiceParams
	capper      *frequency.Capper
	reloadCache *cache.Cache
}

// NewSpendService creates a new spend service
func NewSpendService(params ServiceParams) SpendService {
	bucket := time.Duration(params.Config.Wallet.AutoReloadBucketMinutes) * time.Minute
	return &spendService{
		ServiceParams: params,
		capper:        frequency.NewCapper(defaultFrequencyCapLimit, defaultFrequencyCapWindow),
		reloadCache:   cache.New(bucket, 2*bucket),
	}
}

// SpendCredits converts a usage quantity into credits at the given rate.
// CPM rates are cents per thousand impressions and round up; CPC rates are
// cents per click. One credit equals one cent.
func SpendCredits(model types.RateModel, quantity, rateUSDCents int64) int64 {
	q := decimal.NewFromInt(quantity)
	rate := decimal.NewFromInt(rateUSDCents)

	switch model {
	case types.RateModelCPM:
		return q.Mul(rate).Div(decimal.NewFromInt(1000)).Ceil().IntPart()
	case types.RateModelCPC:
		return q.Mul(rate).IntPart()
	}
	return 0
}

func (s *spendService) Charge(ctx context.Context, req *dto.ChargeSpendRequest) (*dto.ChargeSpendResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Replay wins over every other check: a key that already settled returns
	// its original result even if the wallet froze since.
	if existing, err := s.WalletRepo.GetTransactionByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
		balance := int64(0)
		if w, err := s.WalletRepo.GetWalletByID(ctx, existing.WalletID); err == nil {
			balance = w.BalanceCredits
		}
		return dto.NewChargeSpendResponse(existing, balance, true), nil
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	w, err := s.WalletRepo.GetWalletByID(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}
	if w.IsFrozen() {
		return nil, ierr.NewError("wallet is frozen").
			WithHint("Spend is blocked while the wallet is frozen").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": w.ID,
			}).
			Mark(ierr.ErrWalletFrozen)
	}

	credits := SpendCredits(req.RateModel, req.Quantity, req.RateUSDCents)
	if credits <= 0 {
		return nil, ierr.NewError("charge resolves to zero credits").
			WithHint("Quantity and rate must produce a positive charge").
			Mark(ierr.ErrValidation)
	}

	walletSvc := NewWalletService(s.ServiceParams)
	tx, duplicate, err := walletSvc.DebitWallet(ctx, &WalletOperation{
		WalletID:       req.WalletID,
		Credits:        credits,
		Type:           types.TransactionTypeSpend,
		ReferenceType:  types.WalletTxReferenceTypeCampaign,
		ReferenceID:    req.CampaignID,
		IdempotencyKey: req.IdempotencyKey,
		Memo:           string(req.MetricType) + " charge",
	})
	if err != nil {
		return nil, err
	}

	// When the re-read fails fall back to the pre-debit balance minus the
	// charge, never to a stale value that overstates the remaining funds
	balance := w.BalanceCredits - credits
	if fresh, err := s.WalletRepo.GetWalletByID(ctx, req.WalletID); err == nil {
		balance = fresh.BalanceCredits
	}

	resp := dto.NewChargeSpendResponse(tx, balance, duplicate)
	if duplicate {
		return resp, nil
	}

	s.recordLedgerEntry(ctx, req, credits, tx.ID)

	if req.ViewerID != "" && req.MetricType == types.MetricTypeImpression {
		resp.OverFrequencyCap = !s.capper.Allow(req.CampaignID, req.ViewerID)
	}

	s.maybeAutoReload(ctx, req.WalletID)

	return resp, nil
}

// recordLedgerEntry writes the metering audit row. Best-effort: the charge
// has already committed, so a failure here is logged and swallowed.
func (s *spendService) recordLedgerEntry(ctx context.Context, req *dto.ChargeSpendRequest, credits int64, transactionID string) {
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	entry := &adspend.LedgerEntry{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AD_SPEND),
		CampaignID:          req.CampaignID,
		MetricType:          req.MetricType,
		Quantity:            req.Quantity,
		RateModel:           req.RateModel,
		RateUSDCents:        req.RateUSDCents,
		CreditsCharged:      credits,
		OccurredAt:          occurredAt,
		WalletTransactionID: transactionID,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	if err := s.AdSpendRepo.Create(ctx, entry); err != nil {
		s.Logger.Errorw("failed to record ad spend ledger entry",
			"error", err,
			"campaign_id", req.CampaignID,
			"wallet_transaction_id", transactionID,
		)
	}
}

// maybeAutoReload initiates a top-up purchase when the balance dropped below
// the wallet's low balance threshold. Credits arrive only once the processor
// confirms payment and the webhook reconciler settles the invoice, like any
// other purchase. The in-process cache suppresses repeat triggers cheaply;
// the time-bucketed idempotency key makes the purchase exactly-once across
// replicas.
func (s *spendService) maybeAutoReload(ctx context.Context, walletID string) {
	w, err := s.WalletRepo.GetWalletByID(ctx, walletID)
	if err != nil {
		return
	}
	if !w.AutoReloadEnabled || w.BalanceCredits >= w.LowBalanceThreshold {
		return
	}

	bucket := time.Duration(s.Config.Wallet.AutoReloadBucketMinutes) * time.Minute
	key := s.IdempotencyGen.GenerateKey(idempotency.ScopeAutoReload, map[string]interface{}{
		"wallet_id": walletID,
		"bucket":    time.Now().UTC().Truncate(bucket).Unix(),
	})

	if _, seen := s.reloadCache.Get(key); seen {
		return
	}
	s.reloadCache.Set(key, struct{}{}, bucket)

	purchaseSvc := NewPurchaseService(s.ServiceParams)
	resp, err := purchaseSvc.Purchase(ctx, &dto.PurchaseCreditsRequest{
		OwnerType:      w.OwnerType,
		OwnerID:        w.OwnerID,
		CustomCredits:  w.AutoReloadTopupCredits,
		IdempotencyKey: key,
	})
	if err != nil {
		s.Logger.Errorw("auto reload top-up purchase failed",
			"error", err,
			"wallet_id", walletID,
		)
		return
	}
	if !resp.Duplicate {
		s.Logger.Infow("auto reload initiated top-up purchase",
			"wallet_id", walletID,
			"invoice_id", resp.InvoiceID,
			"credits", resp.CreditsPurchased,
		)
	}
}

func (s *spendService) ListCampaignSpend(ctx context.Context, campaignID string, limit, offset int) ([]*adspend.LedgerEntry, error) {
	if campaignID == "" {
		return nil, ierr.NewError("campaign_id is required").
			WithHint("Provide a campaign id").
			Mark(ierr.ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.AdSpendRepo.ListByCampaign(ctx, campaignID, limit, offset)
}
