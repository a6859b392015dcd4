package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokens are refreshed this long before they actually expire.
const expiryBuffer = 5 * time.Minute

// Authenticator holds the OAuth refresh-token flow for the POS API. Access
// tokens are cached until close to expiry; concurrent callers share a single
// refresh instead of racing the token endpoint.
type Authenticator struct {
	clientID     string
	clientSecret string
	refreshToken string
	tokenURL     string
	http         *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewAuthenticator(clientID, clientSecret, refreshToken, tokenURL string) *Authenticator {
	return &Authenticator{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		tokenURL:     tokenURL,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a valid access token, refreshing it when needed.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.expiresAt.Add(-expiryBuffer)) {
		return a.accessToken, nil
	}

	return a.refresh(ctx)
}

func (a *Authenticator) refresh(ctx context.Context) (string, error) {
	log.Println("refreshing POS access token")

	form := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"refresh_token": {a.refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh: status %d: %s", resp.StatusCode, raw)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token refresh: empty access token")
	}

	a.accessToken = body.AccessToken
	a.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)

	return a.accessToken, nil
}
