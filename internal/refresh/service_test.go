package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/pos"
)

// --------------------------------------------------
// In-memory repositories
// --------------------------------------------------

type memCatalogRepo struct {
	items   []catalog.ItemRow
	aliases []catalog.AliasRow
	listErr error
}

func (m *memCatalogRepo) ListItems(ctx context.Context) ([]catalog.ItemRow, error) {
	return m.items, m.listErr
}

func (m *memCatalogRepo) ListAliases(ctx context.Context) ([]catalog.AliasRow, error) {
	return m.aliases, nil
}

func (m *memCatalogRepo) UpsertItems(ctx context.Context, rows []catalog.ItemRow) error {
	byID := make(map[string]int, len(m.items))
	for i, it := range m.items {
		byID[it.ID] = i
	}
	for _, row := range rows {
		if i, ok := byID[row.ID]; ok {
			// curated columns survive the POS sync
			row.DefaultSides = m.items[i].DefaultSides
			row.PieceCount = m.items[i].PieceCount
			m.items[i] = row
		} else {
			m.items = append(m.items, row)
		}
	}
	return nil
}

type memRuleRepo struct {
	rules []modifier.Rule
}

func (m *memRuleRepo) ListRules(ctx context.Context) ([]modifier.Rule, error) {
	return m.rules, nil
}

type memSource struct {
	items []pos.Item
	err   error
}

func (m *memSource) ListItems(ctx context.Context) ([]pos.Item, error) {
	return m.items, m.err
}

type memArchive struct {
	keys []string
}

func (m *memArchive) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	m.keys = append(m.keys, key)
	return "https://archive/" + key, nil
}

func newTestService(repo *memCatalogRepo, source *memSource) (*Service, *Store, *memArchive) {
	store := NewStore()
	archive := &memArchive{}
	svc := NewService(repo, &memRuleRepo{}, source, store, archive)
	return svc, store, archive
}

// --------------------------------------------------
// Tests
// --------------------------------------------------

func TestRebuild_PublishesSnapshot(t *testing.T) {
	repo := &memCatalogRepo{
		items: []catalog.ItemRow{
			{ID: "combo-naranja", Name: "Pollo Naranja", Category: "combinacion", PriceCents: 1299},
		},
	}
	svc, store, archive := newTestService(repo, &memSource{})

	snap, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if store.Current() != snap {
		t.Error("expected snapshot published to the store")
	}
	if snap.Catalog.Len() != 1 {
		t.Errorf("expected 1 item, got %d", snap.Catalog.Len())
	}
	if len(archive.keys) != 1 {
		t.Fatalf("expected one archived snapshot, got %d", len(archive.keys))
	}
	if archive.keys[0] != "catalogs/"+snap.Catalog.Version()+".json" {
		t.Errorf("unexpected archive key %q", archive.keys[0])
	}
	if snap.BuiltAt.IsZero() || time.Since(snap.BuiltAt) > time.Minute {
		t.Errorf("unexpected build time %v", snap.BuiltAt)
	}
}

func TestRebuild_FailureKeepsCurrentSnapshot(t *testing.T) {
	repo := &memCatalogRepo{
		items: []catalog.ItemRow{
			{ID: "combo-naranja", Name: "Pollo Naranja", Category: "combinacion", PriceCents: 1299},
		},
	}
	svc, store, _ := newTestService(repo, &memSource{})

	first, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("first rebuild: %v", err)
	}

	repo.listErr = errors.New("db down")
	if _, err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected rebuild failure")
	}

	if store.Current() != first {
		t.Error("failed rebuild must keep the previous snapshot")
	}
}

func TestRefreshFromPOS(t *testing.T) {
	repo := &memCatalogRepo{
		items: []catalog.ItemRow{
			{ID: "var-1", Name: "Old Name", Category: "combinacion", PriceCents: 1199,
				DefaultSides: []string{"var-2"}},
			{ID: "var-2", Name: "Arroz Frito", Category: "acompanante", PriceCents: 450},
		},
	}
	source := &memSource{items: []pos.Item{
		{ID: "item-1", VariantID: "var-1", Name: "Pollo Naranja", CategoryName: "Combinaciones", PriceCents: 1299},
		{ID: "item-2", VariantID: "var-2", Name: "Arroz Frito", CategoryName: "Acompanantes", PriceCents: 450},
		{ID: "item-3", VariantID: "var-3", Name: "Sopa China Grandes", CategoryName: "Sopas", PriceCents: 850},
	}}
	svc, store, _ := newTestService(repo, source)

	snap, err := svc.RefreshFromPOS(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if snap.Catalog.Len() != 3 {
		t.Fatalf("expected 3 items after sync, got %d", snap.Catalog.Len())
	}

	updated, ok := snap.Catalog.Lookup("var-1")
	if !ok {
		t.Fatal("expected var-1 in catalog")
	}
	if updated.Name != "Pollo Naranja" || updated.PriceCents != 1299 {
		t.Errorf("expected name and price updated from POS, got %+v", updated)
	}
	if len(updated.DefaultSides) != 1 || updated.DefaultSides[0] != "var-2" {
		t.Errorf("curated default sides must survive the sync, got %+v", updated.DefaultSides)
	}

	if store.Current() != snap {
		t.Error("expected refreshed snapshot published")
	}
}

func TestRefreshFromPOS_EmptyPullRejected(t *testing.T) {
	repo := &memCatalogRepo{
		items: []catalog.ItemRow{
			{ID: "var-1", Name: "Pollo Naranja", Category: "combinacion", PriceCents: 1299},
		},
	}
	svc, _, _ := newTestService(repo, &memSource{})

	if _, err := svc.RefreshFromPOS(context.Background()); err == nil {
		t.Fatal("expected empty POS pull to be rejected")
	}
	if len(repo.items) != 1 {
		t.Error("empty pull must not touch stored items")
	}
}

func TestMapCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Combinaciones", "combinacion"},
		{"Mini Combinaciones", "mini_combinacion"},
		{"Acompañantes", "acompanante"},
		{"Adicionales", "adicional"},
		{"Sopas", "sopa"},
		{"Bebidas", "other"},
	}
	for _, tc := range cases {
		if got := mapCategory(tc.in); got != tc.want {
			t.Errorf("mapCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStoreSwap(t *testing.T) {
	store := NewStore()
	if store.Current() != nil {
		t.Fatal("expected nil before first publish")
	}

	a := &Snapshot{BuiltAt: time.Now()}
	b := &Snapshot{BuiltAt: time.Now()}

	store.Publish(a)
	if store.Current() != a {
		t.Error("expected first snapshot")
	}
	store.Publish(b)
	if store.Current() != b {
		t.Error("expected swapped snapshot")
	}
}
