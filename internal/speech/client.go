package speech

import (
	"context"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}
