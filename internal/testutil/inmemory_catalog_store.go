package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
)

type InMemoryCatalogStore struct {
	mu       sync.RWMutex
	packages map[string]*creditpackage.Package
	promos   map[string]*creditpackage.Promo
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		packages: make(map[string]*creditpackage.Package),
		promos:   make(map[string]*creditpackage.Promo),
	}
}

func (r *InMemoryCatalogStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages = make(map[string]*creditpackage.Package)
	r.promos = make(map[string]*creditpackage.Promo)
}

func (r *InMemoryCatalogStore) AddPackage(pkg *creditpackage.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *pkg
	r.packages[pkg.ID] = &copied
}

func (r *InMemoryCatalogStore) AddPromo(promo *creditpackage.Promo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *promo
	r.promos[strings.ToUpper(promo.Code)] = &copied
}

func (r *InMemoryCatalogStore) GetPackage(ctx context.Context, id string) (*creditpackage.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pkg, exists := r.packages[id]; exists {
		copied := *pkg
		return &copied, nil
	}
	return nil, ierr.NewError("package not found").
		WithHint("Unknown credit package").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryCatalogStore) GetPromo(ctx context.Context, code string) (*creditpackage.Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if promo, exists := r.promos[strings.ToUpper(code)]; exists {
		copied := *promo
		return &copied, nil
	}
	return nil, ierr.NewError("promo code not found").
		WithHint("Unknown promo code").
		Mark(ierr.ErrNotFound)
}
