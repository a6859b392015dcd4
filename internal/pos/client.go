package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Loyverse API: item pulls for catalog refresh and
// receipt creation for confirmed orders.
type Client struct {
	baseURL string
	storeID string
	auth    *Authenticator
	http    *http.Client
}

func NewClient(baseURL, storeID string, auth *Authenticator) *Client {
	return &Client{
		baseURL: baseURL,
		storeID: storeID,
		auth:    auth,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// --------------------------------------------------
// ITEM PULL (paginated)
// --------------------------------------------------
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {

	var (
		items  []Item
		cursor string
	)

	for {
		url := c.baseURL + "/items?limit=250"
		if cursor != "" {
			url += "&cursor=" + cursor
		}

		var page struct {
			Items []struct {
				ID       string `json:"id"`
				Name     string `json:"item_name"`
				Category string `json:"category_name"`
				Variants []struct {
					VariantID string `json:"variant_id"`
					SKU       string `json:"sku"`
					Stores    []struct {
						StoreID string  `json:"store_id"`
						Price   float64 `json:"price"`
					} `json:"stores"`
				} `json:"variants"`
			} `json:"items"`
			Cursor string `json:"cursor"`
		}

		if err := c.get(ctx, url, &page); err != nil {
			return nil, err
		}

		for _, it := range page.Items {
			for _, v := range it.Variants {
				price := 0.0
				for _, st := range v.Stores {
					if c.storeID == "" || st.StoreID == c.storeID {
						price = st.Price
						break
					}
				}
				items = append(items, Item{
					ID:           it.ID,
					VariantID:    v.VariantID,
					Name:         it.Name,
					CategoryName: it.Category,
					PriceCents:   Cents(price),
					SKU:          v.SKU,
				})
			}
		}

		if page.Cursor == "" {
			return items, nil
		}
		cursor = page.Cursor
	}
}

// --------------------------------------------------
// RECEIPT CREATION
// --------------------------------------------------
func (c *Client) CreateReceipt(ctx context.Context, note string, lines []LineItem) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("receipt without line items")
	}

	payload := map[string]any{
		"store_id":   c.storeID,
		"note":       note,
		"line_items": lines,
	}

	var created struct {
		ReceiptNumber string `json:"receipt_number"`
	}
	if err := c.post(ctx, c.baseURL+"/receipts", payload, &created); err != nil {
		return "", err
	}
	if created.ReceiptNumber == "" {
		return "", fmt.Errorf("pos returned receipt without a number")
	}

	return created.ReceiptNumber, nil
}

// --------------------------------------------------
// HTTP plumbing
// --------------------------------------------------
func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	token, err := c.auth.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pos api: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
