package order

import (
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/alias"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
)

// group is the currently open anchor plus everything recorded against it.
type group struct {
	anchor     catalog.Item
	anchorIdx  int
	anchorRaw  string
	quantity   int
	suppressed bool
	hasParts   bool
	partSum    int
}

// normalizer walks one flat line sequence left to right. It is throwaway
// per-call state; Normalize itself holds nothing between calls.
type normalizer struct {
	cat   *catalog.Catalog
	ix    *alias.Index
	rules *modifier.RuleSet

	mains       []ResolvedLine
	attachments []ResolvedLine
	problems    []Problem
	open        *group
}

// Normalize turns raw extraction lines into either a priced Order or a
// consolidated ClarificationRequest, exactly one of which is non-nil.
// It is a pure function of its inputs: no I/O, no shared state, safe to
// call concurrently against the same catalog snapshot. Problem lines never
// abort the walk; every remaining line is still processed so the caller
// can re-prompt for all of them at once.
func Normalize(lines []Line, cat *catalog.Catalog, ix *alias.Index, rules *modifier.RuleSet) (*Order, *ClarificationRequest) {
	n := &normalizer{cat: cat, ix: ix, rules: rules}

	for i, line := range lines {
		n.step(i, line)
	}
	n.closeGroup()

	if len(n.problems) > 0 {
		return nil, &ClarificationRequest{Problems: n.problems}
	}

	resolved := make([]ResolvedLine, 0, len(n.mains)+len(n.attachments))
	resolved = append(resolved, n.mains...)
	resolved = append(resolved, n.attachments...)

	var subtotal int64
	for _, rl := range resolved {
		subtotal += rl.PriceCents * int64(rl.Quantity)
	}

	return &Order{
		Lines:          resolved,
		SubtotalCents:  subtotal,
		CatalogVersion: cat.Version(),
	}, nil
}

func (n *normalizer) step(idx int, line Line) {
	if line.Quantity <= 0 {
		n.problem(idx, line.Alias, ReasonZeroQuantity, nil)
		return
	}

	surface := line.Alias
	if line.PartHint != "" {
		surface = line.PartHint
	}

	pos := alias.PositionMain
	if n.open != nil {
		pos = alias.PositionModifier
	}

	res := n.ix.Resolve(surface, pos)

	switch res.Kind {
	case alias.ResolvedItem:
		n.acceptItem(idx, line, res.Target.ID)

	case alias.ResolvedModifier:
		n.acceptModifier(idx, line, res.Target.ID)

	case alias.Ambiguous:
		n.problem(idx, line.Alias, ReasonAmbiguousSize, res.Candidates)

	default:
		n.problem(idx, line.Alias, ReasonUnknownAlias, nil)
	}
}

func (n *normalizer) acceptItem(idx int, line Line, itemID string) {
	item, ok := n.cat.Lookup(itemID)
	if !ok {
		// Index out of sync with the catalog snapshot; surface, don't guess.
		n.problem(idx, line.Alias, ReasonUnknownAlias, nil)
		return
	}

	n.closeGroup()

	n.mains = append(n.mains, ResolvedLine{
		Ref:        item.ID,
		Name:       item.Name,
		Kind:       KindMain,
		Category:   item.Category,
		Quantity:   line.Quantity,
		PriceCents: item.PriceCents,
	})

	if item.Category.AnchorsGroup() {
		n.open = &group{
			anchor:    item,
			anchorIdx: idx,
			anchorRaw: line.Alias,
			quantity:  line.Quantity,
		}
	}
}

func (n *normalizer) acceptModifier(idx int, line Line, ruleID string) {
	if n.open == nil {
		// DetachedModifierError: a modifier with nothing to attach to.
		n.problem(idx, line.Alias, ReasonUnknownAlias, nil)
		return
	}

	rule, ok := n.rules.Get(ruleID)
	if !ok {
		n.problem(idx, line.Alias, ReasonUnknownAlias, nil)
		return
	}
	if rule.Part && n.open.anchor.PieceCount == 0 {
		n.problem(idx, line.Alias, ReasonInvalidPartSplit, nil)
		return
	}

	app, err := n.rules.Classify(ruleID, n.open.anchor, line.Quantity, line.PerUnit)
	if err != nil {
		// IncompatibleModifierError: offered, but not for this dish.
		n.problem(idx, line.Alias, ReasonUnknownAlias, nil)
		return
	}

	kind := KindModifier
	if rule.Part {
		kind = KindPart
		n.open.hasParts = true
		n.open.partSum += app.Quantity
	}
	if app.SuppressDefaults {
		n.open.suppressed = true
	}

	n.attachments = append(n.attachments, ResolvedLine{
		Ref:        rule.ID,
		Name:       rule.Name,
		Kind:       kind,
		Category:   n.open.anchor.Category,
		Quantity:   app.Quantity,
		PriceCents: rule.DeltaCents,
	})
}

// closeGroup settles the open group: validates a recorded part split against
// the anchor's declared piece total and attaches default sides unless a
// substitution suppressed them.
func (n *normalizer) closeGroup() {
	g := n.open
	if g == nil {
		return
	}
	n.open = nil

	if g.hasParts && g.partSum != g.anchor.PieceCount {
		n.problem(g.anchorIdx, g.anchorRaw, ReasonInvalidPartSplit, nil)
		return
	}

	if g.suppressed {
		return
	}

	for _, sideID := range g.anchor.DefaultSides {
		side, ok := n.cat.Lookup(sideID)
		if !ok {
			// Load already validated side references; an unknown id here
			// means a broken snapshot.
			n.problem(g.anchorIdx, g.anchorRaw, ReasonUnknownAlias, nil)
			continue
		}
		n.attachments = append(n.attachments, ResolvedLine{
			Ref:        side.ID,
			Name:       side.Name,
			Kind:       KindSide,
			Category:   side.Category,
			Quantity:   g.quantity,
			PriceCents: 0,
		})
	}
}

func (n *normalizer) problem(idx int, raw string, reason ReasonCode, cands []alias.Candidate) {
	n.problems = append(n.problems, Problem{
		LineIndex:  idx,
		Alias:      raw,
		Reason:     reason,
		Candidates: cands,
	})
}
