package modifier

import (
	"errors"
	"fmt"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
)

// Class is the kind of change a modifier applies to its group's anchor.
type Class string

const (
	ClassSubstitution Class = "substitution" // cambio: swap the default sides, may cost extra
	ClassRemoval      Class = "removal"      // sin / no: zero-priced annotation
	ClassAddition     Class = "addition"     // extra: priced add-on
	ClassReduction    Class = "reduction"    // poco: zero-priced annotation
)

var validClasses = map[Class]bool{
	ClassSubstitution: true,
	ClassRemoval:      true,
	ClassAddition:     true,
	ClassReduction:    true,
}

// Rule is one declarative modifier. Categories empty means the rule applies
// to every category. Part marks a piece-cut name (cadera, pechuga, ...) whose
// line quantities must partition the anchor's declared piece count.
type Rule struct {
	ID         string
	Name       string
	Class      Class
	Categories []catalog.Category
	DeltaCents int64
	SideItemID string
	Part       bool
}

// ErrIncompatible means a modifier was aimed at an anchor whose category the
// rule does not cover. The normalizer converts it into a clarification, it
// never escapes normalize().
var ErrIncompatible = errors.New("modifier not offered for this item")

// RuleSet is the validated, read-only rule table for one catalog version.
type RuleSet struct {
	rules map[string]Rule
	order []string
}

// BuildRules validates raw rules against a catalog. Price deltas must be
// non-negative for additions and substitutions and exactly zero for removals
// and reductions; substitution side targets must exist in the catalog.
func BuildRules(cat *catalog.Catalog, rows []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[string]Rule, len(rows))}

	for _, rule := range rows {
		if rule.ID == "" {
			return nil, errors.New("modifier rule without id")
		}
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %s: missing name", rule.ID)
		}
		if !validClasses[rule.Class] {
			return nil, fmt.Errorf("rule %s: unknown class %q", rule.ID, rule.Class)
		}
		if _, dup := rs.rules[rule.ID]; dup {
			return nil, fmt.Errorf("rule %s: duplicate id", rule.ID)
		}

		switch rule.Class {
		case ClassSubstitution, ClassAddition:
			if rule.DeltaCents < 0 {
				return nil, fmt.Errorf("rule %s: negative delta", rule.ID)
			}
		case ClassRemoval, ClassReduction:
			if rule.DeltaCents != 0 {
				return nil, fmt.Errorf("rule %s: %s must have zero delta", rule.ID, rule.Class)
			}
		}

		if rule.Class == ClassSubstitution {
			if rule.SideItemID == "" {
				return nil, fmt.Errorf("rule %s: substitution without side item", rule.ID)
			}
			if _, ok := cat.Lookup(rule.SideItemID); !ok {
				return nil, fmt.Errorf("rule %s: side item %s not in catalog", rule.ID, rule.SideItemID)
			}
		}

		rs.rules[rule.ID] = rule
		rs.order = append(rs.order, rule.ID)
	}

	return rs, nil
}

// Get returns the rule for id.
func (rs *RuleSet) Get(id string) (Rule, bool) {
	rule, ok := rs.rules[id]
	return rule, ok
}

// Rules returns all rules in build order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, len(rs.order))
	for _, id := range rs.order {
		out = append(out, rs.rules[id])
	}
	return out
}

// Application is a rule bound to a concrete group: the effective quantity and
// whether the group's default sides get suppressed.
type Application struct {
	Rule             Rule
	Quantity         int
	SuppressDefaults bool
}

// Classify binds a rule to a group anchor. A combo "con tostones" is one
// substitution even when two combos were ordered, so the quantity is 1
// unless the extraction explicitly tagged the line per-unit, in which case
// the line's own quantity carries through. Part rules always carry their
// line quantity because the counts partition the anchor's piece total.
func (rs *RuleSet) Classify(ruleID string, anchor catalog.Item, lineQty int, perUnit bool) (Application, error) {
	rule, ok := rs.rules[ruleID]
	if !ok {
		return Application{}, fmt.Errorf("unknown modifier rule %s", ruleID)
	}

	if !rule.appliesTo(anchor.Category) {
		return Application{}, fmt.Errorf("%w: %s on %s", ErrIncompatible, rule.Name, anchor.Name)
	}
	if rule.Part && anchor.PieceCount == 0 {
		return Application{}, fmt.Errorf("%w: %s needs a piece-count item", ErrIncompatible, rule.Name)
	}

	qty := 1
	if rule.Part || perUnit {
		qty = lineQty
	}

	return Application{
		Rule:             rule,
		Quantity:         qty,
		SuppressDefaults: rule.Class == ClassSubstitution,
	}, nil
}

func (r Rule) appliesTo(cat catalog.Category) bool {
	if len(r.Categories) == 0 {
		return true
	}
	for _, c := range r.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
