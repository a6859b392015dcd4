package whatsapp

import (
	"context"
	"net/http"
)

// Inbound is one customer message with the provider framing stripped.
type Inbound struct {
	From        string
	ProfileName string
	Body        string
	MediaURL    string
	MediaType   string
}

// Adapter abstracts the WhatsApp provider. Twilio and 360dialog deliver
// the same conversation, just with different webhook and send framing.
type Adapter interface {
	ParseWebhook(r *http.Request) (Inbound, error)
	SendText(ctx context.Context, to, text string) error
	DownloadMedia(ctx context.Context, url string) ([]byte, string, error)
}
