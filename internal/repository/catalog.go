package repository

import (
	"context"
	"strings"

	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
)

// catalogRepository serves the credit package catalog and promo codes from
// configuration. Catalog management is out of scope for the engine, so there
// is no database table behind it.
type catalogRepository struct {
	packages map[string]*creditpackage.Package
	promos   map[string]*creditpackage.Promo
}

// NewCatalogRepository builds the config-seeded catalog
func NewCatalogRepository(cfg *config.Configuration) creditpackage.Repository {
	r := &catalogRepository{
		packages: make(map[string]*creditpackage.Package),
		promos:   make(map[string]*creditpackage.Promo),
	}
	for _, p := range cfg.Catalog.Packages {
		r.packages[p.ID] = &creditpackage.Package{
			ID:            p.ID,
			Credits:       p.Credits,
			PriceUSDCents: p.PriceUSDCents,
		}
	}
	for _, p := range cfg.Catalog.Promos {
		r.promos[strings.ToUpper(p.Code)] = &creditpackage.Promo{
			Code:           p.Code,
			Type:           p.Type,
			PercentOff:     p.PercentOff,
			AmountOffCents: p.AmountOffCents,
			BonusCredits:   p.BonusCredits,
		}
	}
	return r
}

func (r *catalogRepository) GetPackage(ctx context.Context, id string) (*creditpackage.Package, error) {
	if p, ok := r.packages[id]; ok {
		return p, nil
	}
	return nil, ierr.NewError("credit package not found").
		WithHint("Unknown credit package").
		WithReportableDetails(map[string]any{
			"package_id": id,
		}).
		Mark(ierr.ErrNotFound)
}

func (r *catalogRepository) GetPromo(ctx context.Context, code string) (*creditpackage.Promo, error) {
	if p, ok := r.promos[strings.ToUpper(code)]; ok {
		return p, nil
	}
	return nil, ierr.NewError("promo code not found").
		WithHint("Unknown promo code").
		WithReportableDetails(map[string]any{
			"promo_code": code,
		}).
		Mark(ierr.ErrNotFound)
}
