package adspend

import (
	"context"
)

// Repository defines the interface for ad spend ledger persistence
type Repository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*LedgerEntry, error)
}
