package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/ticketpulse/adwallet/internal/domain/adspend"
)

type InMemoryAdSpendStore struct {
	mu      sync.RWMutex
	entries map[string]*adspend.LedgerEntry
}

func NewInMemoryAdSpendStore() *InMemoryAdSpendStore {
	return &InMemoryAdSpendStore{
		entries: make(map[string]*adspend.LedgerEntry),
	}
}

func (r *InMemoryAdSpendStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*adspend.LedgerEntry)
}

func (r *InMemoryAdSpendStore) Create(ctx context.Context, entry *adspend.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *InMemoryAdSpendStore) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*adspend.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*adspend.LedgerEntry
	for _, entry := range r.entries {
		if entry.CampaignID == campaignID {
			copied := *entry
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})

	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}
