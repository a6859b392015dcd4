package order

import (
	"context"
	"time"
)

// Receipt is one submitted order as recorded locally, with the id the POS
// assigned to it.
type Receipt struct {
	ID             string         `json:"id"`
	CustomerPhone  string         `json:"customer_phone"`
	PosReceiptID   string         `json:"pos_receipt_id"`
	SubtotalCents  int64          `json:"subtotal_cents"`
	TaxCents       int64          `json:"tax_cents"`
	TotalCents     int64          `json:"total_cents"`
	CatalogVersion string         `json:"catalog_version"`
	Lines          []ResolvedLine `json:"lines"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Repository is the local receipt log. Every order that reaches the POS is
// recorded here first-party, so a POS outage can't lose the audit trail.
type Repository interface {
	SaveReceipt(ctx context.Context, receipt *Receipt) error
	ListByPhone(ctx context.Context, phone string, limit int) ([]Receipt, error)
}
