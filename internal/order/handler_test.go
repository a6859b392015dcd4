package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/refresh"
)

type memReceipts struct {
	byPhone map[string][]Receipt
}

func (m *memReceipts) SaveReceipt(ctx context.Context, receipt *Receipt) error {
	if m.byPhone == nil {
		m.byPhone = make(map[string][]Receipt)
	}
	m.byPhone[receipt.CustomerPhone] = append(m.byPhone[receipt.CustomerPhone], *receipt)
	return nil
}

func (m *memReceipts) ListByPhone(ctx context.Context, phone string, limit int) ([]Receipt, error) {
	receipts := m.byPhone[phone]
	if len(receipts) > limit {
		receipts = receipts[:limit]
	}
	return receipts, nil
}

func newTestRouter(t *testing.T, repo Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	store := refresh.NewStore()
	store.Publish(&refresh.Snapshot{Catalog: f.cat, Index: f.ix, Rules: f.rules, BuiltAt: time.Now()})

	h := NewHandler(store, repo)
	r := gin.New()
	r.POST("/orders/normalize", h.Normalize)
	r.GET("/orders/history", h.History)
	return r
}

func TestHandlerNormalize_OK(t *testing.T) {
	router := newTestRouter(t, &memReceipts{})

	body := `{"lines": [{"alias": "Pollo Naranja", "quantity": 2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders/normalize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var ord Order
	if err := json.Unmarshal(w.Body.Bytes(), &ord); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ord.SubtotalCents != 2598 {
		t.Errorf("expected subtotal 2598, got %d", ord.SubtotalCents)
	}
	if ord.CatalogVersion != "v1" {
		t.Errorf("expected catalog version v1, got %q", ord.CatalogVersion)
	}
}

func TestHandlerNormalize_Clarification(t *testing.T) {
	router := newTestRouter(t, &memReceipts{})

	body := `{"lines": [{"alias": "sopa china", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders/normalize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Clarification ClarificationRequest `json:"clarification"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Clarification.Problems) != 1 {
		t.Fatalf("expected one problem, got %+v", resp.Clarification.Problems)
	}
	if resp.Clarification.Problems[0].Reason != ReasonAmbiguousSize {
		t.Errorf("expected AMBIGUOUS_SIZE, got %s", resp.Clarification.Problems[0].Reason)
	}
}

func TestHandlerNormalize_EmptyLines(t *testing.T) {
	router := newTestRouter(t, &memReceipts{})

	req := httptest.NewRequest(http.MethodPost, "/orders/normalize", strings.NewReader(`{"lines": []}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandlerHistory(t *testing.T) {
	repo := &memReceipts{}
	repo.SaveReceipt(context.Background(), &Receipt{
		ID:            "r-1",
		CustomerPhone: "+15551234",
		PosReceiptID:  "R-42",
		TotalCents:    2897,
	})
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/orders/history?phone=%2B15551234", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "R-42") {
		t.Errorf("expected receipt in history, got %s", w.Body.String())
	}
}

func TestHandlerHistory_MissingPhone(t *testing.T) {
	router := newTestRouter(t, &memReceipts{})

	req := httptest.NewRequest(http.MethodGet, "/orders/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
