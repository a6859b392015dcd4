package pos

// Item is one sellable variant as the POS reports it. Prices arrive as
// decimal amounts on the wire and are converted to cents at this boundary.
type Item struct {
	ID           string
	VariantID    string
	Name         string
	CategoryName string
	PriceCents   int64
	SKU          string
}

// LineItem is one receipt line in POS terms.
type LineItem struct {
	VariantID string  `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineNote  string  `json:"line_note,omitempty"`
}

// Cents converts a decimal wire amount to minor-currency units.
func Cents(amount float64) int64 {
	if amount < 0 {
		return int64(amount*100 - 0.5)
	}
	return int64(amount*100 + 0.5)
}

// Dollars converts cents back to the decimal wire format.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}
