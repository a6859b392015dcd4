package llm

import (
	"context"
)

type Client interface {
	ExtractOrder(ctx context.Context, message string, menuNames []string) (string, error)
}
