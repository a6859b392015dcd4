package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type Dialog360Adapter struct {
	apiKey  string
	apiBase string
	http    *http.Client
}

func NewDialog360Adapter() *Dialog360Adapter {
	return &Dialog360Adapter{
		apiKey:  os.Getenv("D360_API_KEY"),
		apiBase: "https://waba.360dialog.io/v1",
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// --------------------------------------------------
// Webhook parsing (JSON)
// --------------------------------------------------
func (d *Dialog360Adapter) ParseWebhook(r *http.Request) (Inbound, error) {
	var payload struct {
		Contacts []struct {
			Profile struct {
				Name string `json:"name"`
			} `json:"profile"`
		} `json:"contacts"`
		Messages []struct {
			From string `json:"from"`
			Type string `json:"type"`
			Text struct {
				Body string `json:"body"`
			} `json:"text"`
			Audio struct {
				ID       string `json:"id"`
				MimeType string `json:"mime_type"`
			} `json:"audio"`
			Voice struct {
				ID       string `json:"id"`
				MimeType string `json:"mime_type"`
			} `json:"voice"`
		} `json:"messages"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return Inbound{}, err
	}
	if len(payload.Messages) == 0 {
		return Inbound{}, errors.New("webhook without messages")
	}

	msg := payload.Messages[0]
	in := Inbound{From: "+" + msg.From}

	if len(payload.Contacts) > 0 {
		in.ProfileName = payload.Contacts[0].Profile.Name
	}

	switch msg.Type {
	case "text":
		in.Body = msg.Text.Body
	case "audio":
		in.MediaURL = d.apiBase + "/media/" + msg.Audio.ID
		in.MediaType = msg.Audio.MimeType
	case "voice":
		in.MediaURL = d.apiBase + "/media/" + msg.Voice.ID
		in.MediaType = msg.Voice.MimeType
	}

	return in, nil
}

// --------------------------------------------------
// Outbound text
// --------------------------------------------------
func (d *Dialog360Adapter) SendText(ctx context.Context, to, text string) error {
	payload := map[string]any{
		"recipient_type": "individual",
		"to":             to,
		"type":           "text",
		"text":           map[string]string{"body": text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiBase+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("D360-API-KEY", d.apiKey)

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("360dialog send failed: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// --------------------------------------------------
// Media download (voice notes)
// --------------------------------------------------
func (d *Dialog360Adapter) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("D360-API-KEY", d.apiKey)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("360dialog media download failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}
