package creditpackage

import (
	"context"
)

// Repository resolves packages and promo codes from the catalog. Catalog
// management lives outside this engine; the repository is read-only.
type Repository interface {
	GetPackage(ctx context.Context, id string) (*Package, error)
	GetPromo(ctx context.Context, code string) (*Promo, error)
}
