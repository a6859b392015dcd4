package catalog

// Category buckets every sellable item. Combinaciones and sopas anchor an
// order group; acompanantes and adicionales only ever ride along.
type Category string

const (
	CategoryCombinacion     Category = "combinacion"
	CategoryMiniCombinacion Category = "mini_combinacion"
	CategoryAcompanante     Category = "acompanante"
	CategoryAdicional       Category = "adicional"
	CategorySopa            Category = "sopa"
	CategoryOther           Category = "other"
)

var validCategories = map[Category]bool{
	CategoryCombinacion:     true,
	CategoryMiniCombinacion: true,
	CategoryAcompanante:     true,
	CategoryAdicional:       true,
	CategorySopa:            true,
	CategoryOther:           true,
}

// AnchorsGroup reports whether an item of this category opens a new order
// group that modifiers can attach to.
func (c Category) AnchorsGroup() bool {
	switch c {
	case CategoryCombinacion, CategoryMiniCombinacion, CategorySopa, CategoryOther:
		return true
	}
	return false
}

// Variant is a size option on an item (e.g. Pequeñas / Grandes).
type Variant struct {
	Label      string `json:"label"`
	PriceCents int64  `json:"price_cents"`
}

// Item is an immutable catalog entry. Prices are minor-currency integers.
// PieceCount > 0 means the item accepts part-specification lines
// (e.g. "5 Presas de Pollo" split into cadera/pechuga counts).
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	PriceCents   int64     `json:"price_cents"`
	DefaultSides []string  `json:"default_sides,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
	PieceCount   int       `json:"piece_count,omitempty"`
}

// ItemRow is the raw persisted form of an item, before validation.
type ItemRow struct {
	ID           string
	Name         string
	Category     string
	PriceCents   int64
	DefaultSides []string
	Variants     []Variant
	PieceCount   int
}

// AliasRow maps a curated surface form to a catalog item or a modifier rule.
// Exactly one of ItemID / RuleID is set.
type AliasRow struct {
	Alias  string
	Lang   string
	ItemID string
	RuleID string
}
