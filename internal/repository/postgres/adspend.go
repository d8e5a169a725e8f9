package postgres

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/domain/adspend"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	"github.com/ticketpulse/adwallet/internal/types"
)

type adSpendRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAdSpendRepository creates a new instance of ad spend ledger repository
func NewAdSpendRepository(db *postgres.DB, logger *logger.Logger) adspend.Repository {
	return &adSpendRepository{
		db:     db,
		logger: logger,
	}
}

func (r *adSpendRepository) Create(ctx context.Context, entry *adspend.LedgerEntry) error {
	query := `
		INSERT INTO ad_spend_ledger (
			id, campaign_id, metric_type, quantity, rate_model, rate_usd_cents,
			credits_charged, occurred_at, wallet_transaction_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :campaign_id, :metric_type, :quantity, :rate_model, :rate_usd_cents,
			:credits_charged, :occurred_at, :wallet_transaction_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create ad spend ledger entry").
			WithReportableDetails(map[string]any{
				"campaign_id":           entry.CampaignID,
				"wallet_transaction_id": entry.WalletTransactionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *adSpendRepository) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*adspend.LedgerEntry, error) {
	query := `
		SELECT * FROM ad_spend_ledger
		WHERE campaign_id = :campaign_id
		AND status = :status
		ORDER BY occurred_at DESC, id DESC
		LIMIT :limit OFFSET :offset`

	params := map[string]interface{}{
		"campaign_id": campaignID,
		"status":      types.StatusPublished,
		"limit":       limit,
		"offset":      offset,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query ad spend ledger").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var entries []*adspend.LedgerEntry
	for rows.Next() {
		var entry adspend.LedgerEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan ad spend ledger entry").
				Mark(ierr.ErrDatabase)
		}
		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate ad spend ledger").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}
