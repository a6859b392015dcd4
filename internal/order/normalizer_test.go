package order

import (
	"reflect"
	"testing"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/alias"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
)

// --------------------------------------------------
// Fixtures
// --------------------------------------------------

type fixture struct {
	cat   *catalog.Catalog
	ix    *alias.Index
	rules *modifier.RuleSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Load("v1", []catalog.ItemRow{
		{ID: "combo-naranja", Name: "Pollo Naranja", Category: "combinacion", PriceCents: 1299, DefaultSides: []string{"side-arroz", "side-papa"}},
		{ID: "combo-teriyaki", Name: "Pollo Teriyaki", Category: "combinacion", PriceCents: 1349, DefaultSides: []string{"side-arroz"}},
		{ID: "side-arroz", Name: "Arroz Frito", Category: "acompanante", PriceCents: 450},
		{ID: "side-papa", Name: "Papa Frita", Category: "acompanante", PriceCents: 400},
		{ID: "side-tostones", Name: "Tostones", Category: "acompanante", PriceCents: 500},
		{ID: "sopa-china-peq", Name: "Sopa China Pequeñas", Category: "sopa", PriceCents: 550},
		{ID: "sopa-china-gra", Name: "Sopa China Grandes", Category: "sopa", PriceCents: 850},
		{ID: "presas-5", Name: "5 Presas de Pollo", Category: "other", PriceCents: 1099, PieceCount: 5},
	})
	if err != nil {
		t.Fatalf("catalog load: %v", err)
	}

	rules, err := modifier.BuildRules(cat, []modifier.Rule{
		{ID: "cambio-tostones", Name: "Cambio arroz+tostones", Class: modifier.ClassSubstitution,
			Categories: []catalog.Category{catalog.CategoryCombinacion}, DeltaCents: 269, SideItemID: "side-tostones"},
		{ID: "sin-ajo", Name: "Sin ajo", Class: modifier.ClassRemoval},
		{ID: "extra-salsa", Name: "Extra salsa", Class: modifier.ClassAddition, DeltaCents: 100},
		{ID: "part-cadera", Name: "Cadera", Class: modifier.ClassAddition, Part: true},
		{ID: "part-pechuga", Name: "Pechuga", Class: modifier.ClassAddition, Part: true},
	})
	if err != nil {
		t.Fatalf("build rules: %v", err)
	}

	ix, err := alias.Build(cat, []catalog.AliasRow{
		{Alias: "arroz+tostones", Lang: "es", RuleID: "cambio-tostones"},
		{Alias: "no ajo", Lang: "es", RuleID: "sin-ajo"},
		{Alias: "sin ajo", Lang: "es", RuleID: "sin-ajo"},
		{Alias: "extra salsa", Lang: "es", RuleID: "extra-salsa"},
		{Alias: "cadera", Lang: "es", RuleID: "part-cadera"},
		{Alias: "pechuga", Lang: "es", RuleID: "part-pechuga"},
	})
	if err != nil {
		t.Fatalf("index build: %v", err)
	}

	return &fixture{cat: cat, ix: ix, rules: rules}
}

func (f *fixture) normalize(t *testing.T, lines []Line) (*Order, *ClarificationRequest) {
	t.Helper()
	return Normalize(lines, f.cat, f.ix, f.rules)
}

func (f *fixture) mustOrder(t *testing.T, lines []Line) *Order {
	t.Helper()
	ord, clar := f.normalize(t, lines)
	if clar != nil {
		t.Fatalf("unexpected clarification: %+v", clar.Problems)
	}
	if ord == nil {
		t.Fatal("nil order without clarification")
	}
	return ord
}

func (f *fixture) mustClarify(t *testing.T, lines []Line) *ClarificationRequest {
	t.Helper()
	ord, clar := f.normalize(t, lines)
	if ord != nil {
		t.Fatalf("expected clarification, got order: %+v", ord.Lines)
	}
	if clar == nil {
		t.Fatal("nil clarification without order")
	}
	return clar
}

// --------------------------------------------------
// Plain orders
// --------------------------------------------------

func TestNormalize_SingleGroupDefaults(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{{Alias: "Pollo Naranja", Quantity: 2}})

	if ord.SubtotalCents != 2*1299 {
		t.Errorf("expected subtotal %d, got %d", 2*1299, ord.SubtotalCents)
	}
	if len(ord.Lines) != 3 {
		t.Fatalf("expected main + 2 default sides, got %d lines", len(ord.Lines))
	}

	if ord.Lines[0].Kind != KindMain || ord.Lines[0].Ref != "combo-naranja" {
		t.Errorf("first line should be the main, got %+v", ord.Lines[0])
	}
	for _, rl := range ord.Lines[1:] {
		if rl.Kind != KindSide {
			t.Errorf("expected default side, got %+v", rl)
		}
		if rl.PriceCents != 0 {
			t.Errorf("default side must carry delta 0, got %d", rl.PriceCents)
		}
		if rl.Quantity != 2 {
			t.Errorf("default side should follow anchor quantity, got %d", rl.Quantity)
		}
	}
	if ord.CatalogVersion != "v1" {
		t.Errorf("expected catalog version v1, got %s", ord.CatalogVersion)
	}
}

func TestNormalize_SubstitutionAndRemoval(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{
		{Alias: "Pollo Naranja", Quantity: 1},
		{Alias: "arroz+tostones", Quantity: 1},
		{Alias: "no ajo", Quantity: 1},
	})

	if len(ord.Lines) != 3 {
		t.Fatalf("expected exactly 3 resolved lines, got %d: %+v", len(ord.Lines), ord.Lines)
	}

	if ord.Lines[0].Kind != KindMain || ord.Lines[0].PriceCents != 1299 {
		t.Errorf("main line wrong: %+v", ord.Lines[0])
	}
	if ord.Lines[1].Ref != "cambio-tostones" || ord.Lines[1].PriceCents != 269 {
		t.Errorf("substitution line wrong: %+v", ord.Lines[1])
	}
	if ord.Lines[2].Ref != "sin-ajo" || ord.Lines[2].PriceCents != 0 {
		t.Errorf("removal line wrong: %+v", ord.Lines[2])
	}

	// Defaults suppressed: substitute and default sides never coexist.
	for _, rl := range ord.Lines {
		if rl.Kind == KindSide {
			t.Errorf("default side attached despite substitution: %+v", rl)
		}
	}

	if ord.SubtotalCents != 1299+269 {
		t.Errorf("expected subtotal %d, got %d", 1299+269, ord.SubtotalCents)
	}
}

func TestNormalize_ModifierQuantityPerGroup(t *testing.T) {
	f := newFixture(t)

	// Two combos, one substitution: the cambio counts once.
	ord := f.mustOrder(t, []Line{
		{Alias: "Pollo Naranja", Quantity: 2},
		{Alias: "arroz+tostones", Quantity: 2},
	})

	var sub *ResolvedLine
	for i := range ord.Lines {
		if ord.Lines[i].Ref == "cambio-tostones" {
			sub = &ord.Lines[i]
		}
	}
	if sub == nil {
		t.Fatal("substitution line missing")
	}
	if sub.Quantity != 1 {
		t.Errorf("expected one substitution per group, got quantity %d", sub.Quantity)
	}
	if ord.SubtotalCents != 2*1299+269 {
		t.Errorf("expected subtotal %d, got %d", 2*1299+269, ord.SubtotalCents)
	}
}

func TestNormalize_PerUnitModifierCarriesQuantity(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{
		{Alias: "Pollo Naranja", Quantity: 2},
		{Alias: "extra salsa", Quantity: 2, PerUnit: true},
	})

	var extra *ResolvedLine
	for i := range ord.Lines {
		if ord.Lines[i].Ref == "extra-salsa" {
			extra = &ord.Lines[i]
		}
	}
	if extra == nil {
		t.Fatal("addition line missing")
	}
	if extra.Quantity != 2 {
		t.Errorf("per-unit addition should keep quantity 2, got %d", extra.Quantity)
	}
	if ord.SubtotalCents != 2*1299+2*100 {
		t.Errorf("expected subtotal %d, got %d", 2*1299+2*100, ord.SubtotalCents)
	}
}

func TestNormalize_MultipleGroups(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{
		{Alias: "Pollo Naranja", Quantity: 1},
		{Alias: "arroz+tostones", Quantity: 1},
		{Alias: "Pollo Teriyaki", Quantity: 1},
	})

	// Mains first in input order, then attachments in detection order.
	if ord.Lines[0].Ref != "combo-naranja" || ord.Lines[1].Ref != "combo-teriyaki" {
		t.Errorf("mains not first in input order: %+v", ord.Lines[:2])
	}

	// The second group keeps its default side; the first one lost its own
	// to the substitution.
	var sides, subs int
	for _, rl := range ord.Lines[2:] {
		switch rl.Kind {
		case KindSide:
			sides++
		case KindModifier:
			subs++
		}
	}
	if subs != 1 || sides != 1 {
		t.Errorf("expected 1 substitution + 1 default side, got subs=%d sides=%d: %+v", subs, sides, ord.Lines)
	}
}

// --------------------------------------------------
// Clarifications
// --------------------------------------------------

func TestNormalize_AmbiguousSoupSize(t *testing.T) {
	f := newFixture(t)

	clar := f.mustClarify(t, []Line{{Alias: "Sopa China", Quantity: 1}})

	if len(clar.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(clar.Problems))
	}
	p := clar.Problems[0]
	if p.Reason != ReasonAmbiguousSize {
		t.Errorf("expected AMBIGUOUS_SIZE, got %s", p.Reason)
	}
	if len(p.Candidates) != 2 {
		t.Errorf("expected both soup sizes as candidates, got %+v", p.Candidates)
	}
}

func TestNormalize_UnknownAlias(t *testing.T) {
	f := newFixture(t)

	clar := f.mustClarify(t, []Line{{Alias: "xyz123", Quantity: 1}})

	if clar.Problems[0].Reason != ReasonUnknownAlias {
		t.Errorf("expected UNKNOWN_ALIAS, got %s", clar.Problems[0].Reason)
	}
	if clar.Problems[0].LineIndex != 0 {
		t.Errorf("problem should point at line 0, got %d", clar.Problems[0].LineIndex)
	}
}

func TestNormalize_ZeroQuantity(t *testing.T) {
	f := newFixture(t)

	clar := f.mustClarify(t, []Line{{Alias: "Pollo Naranja", Quantity: 0}})

	if clar.Problems[0].Reason != ReasonZeroQuantity {
		t.Errorf("expected ZERO_QUANTITY, got %s", clar.Problems[0].Reason)
	}
}

func TestNormalize_DetachedModifier(t *testing.T) {
	f := newFixture(t)

	clar := f.mustClarify(t, []Line{{Alias: "no ajo", Quantity: 1}})

	if clar.Problems[0].Reason != ReasonUnknownAlias {
		t.Errorf("expected UNKNOWN_ALIAS for detached modifier, got %s", clar.Problems[0].Reason)
	}
}

func TestNormalize_IncompatibleSubstitution(t *testing.T) {
	f := newFixture(t)

	// cambio is restricted to combinaciones; a soup can't take it.
	clar := f.mustClarify(t, []Line{
		{Alias: "Sopa China Grandes", Quantity: 1},
		{Alias: "arroz+tostones", Quantity: 1},
	})

	if len(clar.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %+v", clar.Problems)
	}
	if clar.Problems[0].LineIndex != 1 {
		t.Errorf("problem should point at the modifier line, got %d", clar.Problems[0].LineIndex)
	}
}

func TestNormalize_ConsolidatesAllProblems(t *testing.T) {
	f := newFixture(t)

	// A valid line between two bad ones: processing continues past every
	// failure and nothing is partially priced.
	clar := f.mustClarify(t, []Line{
		{Alias: "xyz123", Quantity: 1},
		{Alias: "Pollo Naranja", Quantity: 1},
		{Alias: "Sopa China", Quantity: 1},
	})

	if len(clar.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %+v", clar.Problems)
	}
	if clar.Problems[0].LineIndex != 0 || clar.Problems[1].LineIndex != 2 {
		t.Errorf("problems should target lines 0 and 2: %+v", clar.Problems)
	}
}

// --------------------------------------------------
// Part splits
// --------------------------------------------------

func TestNormalize_PartSplitValid(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{
		{Alias: "5 Presas de Pollo", Quantity: 1},
		{Alias: "cadera", Quantity: 3},
		{Alias: "pechuga", Quantity: 2},
	})

	if len(ord.Lines) != 3 {
		t.Fatalf("expected 3 resolved lines, got %d: %+v", len(ord.Lines), ord.Lines)
	}
	if ord.Lines[1].Kind != KindPart || ord.Lines[1].Quantity != 3 {
		t.Errorf("cadera part line wrong: %+v", ord.Lines[1])
	}
	if ord.Lines[2].Kind != KindPart || ord.Lines[2].Quantity != 2 {
		t.Errorf("pechuga part line wrong: %+v", ord.Lines[2])
	}
	if ord.SubtotalCents != 1099 {
		t.Errorf("part lines must not change the subtotal, got %d", ord.SubtotalCents)
	}
}

func TestNormalize_PartSplitMismatch(t *testing.T) {
	f := newFixture(t)

	for _, counts := range [][2]int{{3, 1}, {3, 3}} {
		clar := f.mustClarify(t, []Line{
			{Alias: "5 Presas de Pollo", Quantity: 1},
			{Alias: "cadera", Quantity: counts[0]},
			{Alias: "pechuga", Quantity: counts[1]},
		})

		if clar.Problems[0].Reason != ReasonInvalidPartSplit {
			t.Errorf("counts %v: expected INVALID_PART_SPLIT, got %s", counts, clar.Problems[0].Reason)
		}
	}
}

func TestNormalize_PartOnNonPartAnchor(t *testing.T) {
	f := newFixture(t)

	clar := f.mustClarify(t, []Line{
		{Alias: "Pollo Naranja", Quantity: 1},
		{Alias: "cadera", Quantity: 3},
	})

	if clar.Problems[0].Reason != ReasonInvalidPartSplit {
		t.Errorf("expected INVALID_PART_SPLIT, got %s", clar.Problems[0].Reason)
	}
}

func TestNormalize_PartHintRoutesResolution(t *testing.T) {
	f := newFixture(t)

	ord := f.mustOrder(t, []Line{
		{Alias: "5 Presas de Pollo", Quantity: 1},
		{Alias: "3 cadera", Quantity: 3, PartHint: "cadera"},
		{Alias: "2 pechuga", Quantity: 2, PartHint: "pechuga"},
	})

	if len(ord.Lines) != 3 {
		t.Fatalf("expected 3 resolved lines, got %+v", ord.Lines)
	}
}

// --------------------------------------------------
// Properties
// --------------------------------------------------

func TestNormalize_Idempotent(t *testing.T) {
	f := newFixture(t)

	lines := []Line{
		{Alias: "Pollo Naranja", Quantity: 1},
		{Alias: "arroz+tostones", Quantity: 1},
		{Alias: "Pollo Teriyaki", Quantity: 2},
	}

	first, _ := f.normalize(t, lines)
	for i := 0; i < 10; i++ {
		again, _ := f.normalize(t, lines)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("normalize not idempotent:\n%+v\n%+v", first, again)
		}
	}
}

func TestNormalize_AmbiguityMonotonic(t *testing.T) {
	f := newFixture(t)

	base := []Line{{Alias: "Sopa China", Quantity: 1}}
	clar := f.mustClarify(t, base)

	extended := append([]Line{{Alias: "Pollo Naranja", Quantity: 1}}, base...)
	extended = append(extended, Line{Alias: "Pollo Teriyaki", Quantity: 1})
	clar2 := f.mustClarify(t, extended)

	// Appending unrelated lines never removes the ambiguity.
	if len(clar2.Problems) != 1 || clar2.Problems[0].Reason != ReasonAmbiguousSize {
		t.Fatalf("ambiguity disappeared with unrelated lines: %+v", clar2.Problems)
	}
	if !reflect.DeepEqual(clar.Problems[0].Candidates, clar2.Problems[0].Candidates) {
		t.Error("candidate set changed with unrelated lines")
	}
}
