package alias

import (
	"fmt"
	"sort"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
)

// Position is where an order line sits inside its group. The first line of a
// group names a dish; everything after it is modifier territory. Fuzzy
// matching is restricted to targets compatible with the position so that a
// misspelled side order can't be billed as a main dish.
type Position int

const (
	PositionMain Position = iota
	PositionModifier
)

type TargetKind int

const (
	TargetItem TargetKind = iota
	TargetModifier
)

// Target is what an alias resolves to: a catalog item or a modifier rule.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// Candidate is one possible resolution, surfaced when matching is ambiguous.
type Candidate struct {
	Target  Target  `json:"target"`
	Display string  `json:"display"`
	Score   float64 `json:"score"`
}

type ResolutionKind int

const (
	ResolvedItem ResolutionKind = iota
	ResolvedModifier
	Ambiguous
	NotFound
)

// Resolution is the outcome of resolving one surface form.
type Resolution struct {
	Kind       ResolutionKind
	Target     Target
	Candidates []Candidate
	Score      float64
}

const (
	DefaultThreshold = 0.82
	DefaultTieWindow = 0.03
)

type entry struct {
	norm    string
	display string
	target  Target
}

// Index maps normalized surface forms to catalog items and modifier rules.
// Built once per catalog version, read-only afterwards.
type Index struct {
	exact     map[string][]Target
	display   map[Target]string
	entries   []entry
	scorer    Scorer
	threshold float64
	tieWindow float64
}

type Option func(*Index)

func WithScorer(s Scorer) Option        { return func(ix *Index) { ix.scorer = s } }
func WithThreshold(v float64) Option    { return func(ix *Index) { ix.threshold = v } }
func WithTieWindow(v float64) Option    { return func(ix *Index) { ix.tieWindow = v } }

// Build indexes every catalog item under its display name plus every curated
// alias row. Alias rows must point at a known item or carry a rule id; a row
// pointing at a missing item is a build error, not a silent skip.
func Build(cat *catalog.Catalog, rows []catalog.AliasRow, opts ...Option) (*Index, error) {
	ix := &Index{
		exact:     make(map[string][]Target),
		display:   make(map[Target]string),
		scorer:    TokenSetScorer{},
		threshold: DefaultThreshold,
		tieWindow: DefaultTieWindow,
	}
	for _, opt := range opts {
		opt(ix)
	}

	for _, item := range cat.Items() {
		ix.add(item.Name, item.Name, Target{Kind: TargetItem, ID: item.ID})
	}

	for _, row := range rows {
		switch {
		case row.ItemID != "":
			item, ok := cat.Lookup(row.ItemID)
			if !ok {
				return nil, fmt.Errorf("alias %q points at unknown item %s", row.Alias, row.ItemID)
			}
			ix.add(row.Alias, item.Name, Target{Kind: TargetItem, ID: row.ItemID})
		case row.RuleID != "":
			ix.add(row.Alias, row.Alias, Target{Kind: TargetModifier, ID: row.RuleID})
		default:
			return nil, fmt.Errorf("alias %q has no target", row.Alias)
		}
	}

	// Deterministic scan order for fuzzy matching.
	sort.Slice(ix.entries, func(i, j int) bool {
		if ix.entries[i].norm != ix.entries[j].norm {
			return ix.entries[i].norm < ix.entries[j].norm
		}
		return less(ix.entries[i].target, ix.entries[j].target)
	})

	return ix, nil
}

func (ix *Index) add(surface, display string, t Target) {
	normed := Normalize(surface)
	if normed == "" {
		return
	}

	for _, existing := range ix.exact[normed] {
		if existing == t {
			return
		}
	}
	ix.exact[normed] = append(ix.exact[normed], t)
	ix.entries = append(ix.entries, entry{norm: normed, display: display, target: t})

	if _, ok := ix.display[t]; !ok {
		ix.display[t] = display
	}
}

// Display returns the human-readable name the index knows for a target.
func (ix *Index) Display(t Target) string { return ix.display[t] }

// Resolve matches one raw surface form, exact first, then fuzzy.
// Resolution never guesses: two candidates inside the tie window come back
// as Ambiguous for the caller to surface, because silently picking one
// risks billing the wrong dish.
func (ix *Index) Resolve(raw string, pos Position) Resolution {
	normed := Normalize(raw)
	if normed == "" {
		return Resolution{Kind: NotFound}
	}

	// 1. Exact normalized match wins outright.
	if targets, ok := ix.exact[normed]; ok {
		if len(targets) == 1 {
			return resolved(targets[0], 1.0)
		}
		// The same surface form is curated to multiple targets.
		cands := make([]Candidate, 0, len(targets))
		for _, t := range targets {
			cands = append(cands, Candidate{Target: t, Display: ix.display[t], Score: 1.0})
		}
		sortCandidates(cands)
		return Resolution{Kind: Ambiguous, Candidates: cands}
	}

	// 2. Fuzzy over position-compatible entries, best score per target.
	// A second main dish can legitimately appear mid-order, so when the
	// compatible kind yields nothing the other kind gets one fallback pass;
	// this also keeps a line's ambiguity independent of its neighbors.
	wantKind := TargetItem
	if pos == PositionModifier {
		wantKind = TargetModifier
	}

	best := ix.fuzzy(normed, wantKind)
	if len(best) == 0 {
		other := TargetModifier
		if wantKind == TargetModifier {
			other = TargetItem
		}
		best = ix.fuzzy(normed, other)
	}

	if len(best) == 0 {
		return Resolution{Kind: NotFound}
	}

	cands := make([]Candidate, 0, len(best))
	for _, c := range best {
		cands = append(cands, c)
	}
	sortCandidates(cands)

	top := cands[0].Score
	tied := cands[:1]
	for _, c := range cands[1:] {
		if top-c.Score <= ix.tieWindow {
			tied = append(tied, c)
		}
	}

	// 3. Two or more near-equal candidates: surface, never pick.
	if len(tied) >= 2 {
		return Resolution{Kind: Ambiguous, Candidates: tied}
	}

	return resolved(cands[0].Target, top)
}

func (ix *Index) fuzzy(normed string, kind TargetKind) map[Target]Candidate {
	best := make(map[Target]Candidate)
	for _, e := range ix.entries {
		if e.target.Kind != kind {
			continue
		}
		score := ix.scorer.Score(normed, e.norm)
		if score < ix.threshold {
			continue
		}
		if prev, ok := best[e.target]; !ok || score > prev.Score {
			best[e.target] = Candidate{Target: e.target, Display: ix.display[e.target], Score: score}
		}
	}
	return best
}

func resolved(t Target, score float64) Resolution {
	kind := ResolvedItem
	if t.Kind == TargetModifier {
		kind = ResolvedModifier
	}
	return Resolution{Kind: kind, Target: t, Score: score}
}

func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return less(cands[i].Target, cands[j].Target)
	})
}

func less(a, b Target) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}
