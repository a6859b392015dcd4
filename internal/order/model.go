package order

import (
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/alias"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
)

// Line is one raw extraction result: an alias the customer used, how many,
// and optional extraction tags. PartHint carries the cut name when the
// extraction already split a phrase like "3 cadera" into quantity and part.
type Line struct {
	Alias    string `json:"alias"`
	Quantity int    `json:"quantity"`
	PerUnit  bool   `json:"per_unit,omitempty"`
	PartHint string `json:"part_hint,omitempty"`
}

// LineKind tags what a resolved line represents.
type LineKind string

const (
	KindMain     LineKind = "main"
	KindSide     LineKind = "side"     // default side attached to a group
	KindModifier LineKind = "modifier" // substitution / removal / addition / reduction
	KindPart     LineKind = "part"     // piece-cut count inside a part split
)

// ResolvedLine is one priced, validated entry of a normalized order.
// PriceCents is the base price for main items and the applied delta for
// everything else; default sides and removals carry zero.
type ResolvedLine struct {
	Ref        string           `json:"ref"`
	Name       string           `json:"name"`
	Kind       LineKind         `json:"kind"`
	Category   catalog.Category `json:"category,omitempty"`
	Quantity   int              `json:"quantity"`
	PriceCents int64            `json:"price_cents"`
}

// Order is a terminal result: once returned it is never mutated, a new
// extraction cycle produces a new Order.
type Order struct {
	Lines          []ResolvedLine `json:"lines"`
	SubtotalCents  int64          `json:"subtotal_cents"`
	CatalogVersion string         `json:"catalog_version"`
}

// ReasonCode identifies why a line needs clarification.
type ReasonCode string

const (
	ReasonAmbiguousSize    ReasonCode = "AMBIGUOUS_SIZE"
	ReasonUnknownAlias     ReasonCode = "UNKNOWN_ALIAS"
	ReasonInvalidPartSplit ReasonCode = "INVALID_PART_SPLIT"
	ReasonZeroQuantity     ReasonCode = "ZERO_QUANTITY"
)

// Problem is one input line that failed resolution. LineIndex points back
// into the submitted lines so the caller can re-prompt precisely.
type Problem struct {
	LineIndex  int               `json:"line_index"`
	Alias      string            `json:"alias"`
	Reason     ReasonCode        `json:"reason"`
	Candidates []alias.Candidate `json:"candidates,omitempty"`
}

// ClarificationRequest aggregates every problem line of one normalize call.
// The caller gets one consolidated response, never a partial order next to
// unresolved lines.
type ClarificationRequest struct {
	Problems []Problem `json:"problems"`
}
