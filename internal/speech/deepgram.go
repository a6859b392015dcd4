package speech

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

type DeepgramClient struct {
	apiKey  string
	baseURL string
}

func NewDeepgramClient() *DeepgramClient {
	return &DeepgramClient{
		apiKey:  os.Getenv("DEEPGRAM_API_KEY"),
		baseURL: "https://api.deepgram.com/v1/listen",
	}
}

// Transcribe sends a voice note to Deepgram and returns the transcript.
// Spanish is the primary language of the customer base; smart_format
// keeps numbers as digits so quantity extraction stays reliable.
func (d *DeepgramClient) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if d.apiKey == "" {
		return "", errors.New("missing DEEPGRAM_API_KEY")
	}
	if len(audio) == 0 {
		return "", errors.New("empty audio payload")
	}

	url := d.baseURL + "?model=nova-2&language=es&smart_format=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", contentType)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram api error: %s", string(raw))
	}

	var result struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}

	if len(result.Results.Channels) == 0 ||
		len(result.Results.Channels[0].Alternatives) == 0 {
		return "", errors.New("empty deepgram response")
	}

	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}
