package store

import (
	"context"

	"github.com/auric-sh/auric/internal/model"
)

// Store defines the persistence operations for the local package-metadata
// cache. The cache is best-effort: RPC results are recorded after successful
// lookups and served back when the caller asks for cached data.
type Store interface {
	UpsertPackages(ctx context.Context, pkgs []model.Package) error
	GetPackage(ctx context.Context, name string) (*model.Package, error)
	SearchByName(ctx context.Context, term string) ([]model.Package, error)
	Close() error
}
