package catalog

import "context"

// Repository persists the raw catalog rows the loader consumes.
type Repository interface {

	// Full read for a catalog build. Refresh always reads everything and
	// rebuilds from scratch, never patches a live catalog.
	ListItems(ctx context.Context) ([]ItemRow, error)
	ListAliases(ctx context.Context) ([]AliasRow, error)

	// UpsertItems merges items pulled from the POS. Curated columns
	// (default sides, variants, piece counts) are left untouched.
	UpsertItems(ctx context.Context, rows []ItemRow) error
}
