package modifier

import "context"

// Repository reads the curated modifier rule rows.
type Repository interface {
	ListRules(ctx context.Context) ([]Rule, error)
}
