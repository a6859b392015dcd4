package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type ClaudeClient struct {
	apiKey string
	model  string
}

func NewClaudeClient() *ClaudeClient {
	return &ClaudeClient{
		apiKey: os.Getenv("ANTHROPIC_API_KEY"),
		model:  os.Getenv("ANTHROPIC_MODEL"),
	}
}

// ExtractOrder sends a customer message to Claude and guarantees JSON-only output
func (c *ClaudeClient) ExtractOrder(ctx context.Context, message string, menuNames []string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("missing ANTHROPIC_API_KEY")
	}
	if c.model == "" {
		return "", errors.New("missing ANTHROPIC_MODEL")
	}
	if message == "" {
		return "", errors.New("empty customer message")
	}

	prompt := BuildExtractionPrompt(message, menuNames)

	payload := map[string]any{
		"model":      c.model,
		"max_tokens": 2048,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		"https://api.anthropic.com/v1/messages",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

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
		return "", fmt.Errorf("anthropic api error: %s", string(raw))
	}

	// Anthropic response shape
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}

	if len(result.Content) == 0 || result.Content[0].Text == "" {
		return "", errors.New("empty claude response")
	}

	output := extractJSON(result.Content[0].Text)
	if output == "" || !json.Valid([]byte(output)) {
		return "", errors.New("claude returned non-json output")
	}

	return output, nil
}

// extractJSON trims any prose the model wrapped around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
