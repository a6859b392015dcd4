package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type TwilioAdapter struct {
	accountSID string
	authToken  string
	fromNumber string
	apiBase    string
	http       *http.Client
}

func NewTwilioAdapter() *TwilioAdapter {
	return &TwilioAdapter{
		accountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		fromNumber: os.Getenv("TWILIO_WHATSAPP_FROM"),
		apiBase:    "https://api.twilio.com",
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// --------------------------------------------------
// Webhook parsing (form encoded)
// --------------------------------------------------
func (t *TwilioAdapter) ParseWebhook(r *http.Request) (Inbound, error) {
	if err := r.ParseForm(); err != nil {
		return Inbound{}, err
	}

	from := strings.TrimPrefix(r.FormValue("From"), "whatsapp:")
	if from == "" {
		return Inbound{}, errors.New("webhook without From")
	}

	in := Inbound{
		From:        from,
		ProfileName: r.FormValue("ProfileName"),
		Body:        r.FormValue("Body"),
	}

	if r.FormValue("NumMedia") != "" && r.FormValue("NumMedia") != "0" {
		in.MediaURL = r.FormValue("MediaUrl0")
		in.MediaType = r.FormValue("MediaContentType0")
	}

	return in, nil
}

// --------------------------------------------------
// Outbound text
// --------------------------------------------------
func (t *TwilioAdapter) SendText(ctx context.Context, to, text string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.apiBase, t.accountSID)

	form := url.Values{}
	form.Set("From", "whatsapp:"+t.fromNumber)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio send failed: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// --------------------------------------------------
// Media download (voice notes)
// --------------------------------------------------
func (t *TwilioAdapter) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("twilio media download failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}
