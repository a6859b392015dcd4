package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/alias"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/pos"
)

// ItemSource lists sellable items from the POS.
type ItemSource interface {
	ListItems(ctx context.Context) ([]pos.Item, error)
}

// Archiver keeps a copy of each published catalog build in object storage.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Service struct {
	catRepo  catalog.Repository
	ruleRepo modifier.Repository
	source   ItemSource
	store    *Store
	archive  Archiver
}

func NewService(
	catRepo catalog.Repository,
	ruleRepo modifier.Repository,
	source ItemSource,
	store *Store,
	archive Archiver,
) *Service {
	return &Service{
		catRepo:  catRepo,
		ruleRepo: ruleRepo,
		source:   source,
		store:    store,
		archive:  archive,
	}
}

// --------------------------------------------------
// Rebuild from Postgres (no POS round-trip)
// --------------------------------------------------
func (s *Service) Rebuild(ctx context.Context) (*Snapshot, error) {

	items, err := s.catRepo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	aliases, err := s.catRepo.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	ruleRows, err := s.ruleRepo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	version := uuid.New().String()

	cat, err := catalog.Load(version, items)
	if err != nil {
		return nil, err
	}
	rules, err := modifier.BuildRules(cat, ruleRows)
	if err != nil {
		return nil, fmt.Errorf("build rules: %w", err)
	}
	ix, err := alias.Build(cat, aliases)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	snap := &Snapshot{
		Catalog: cat,
		Index:   ix,
		Rules:   rules,
		BuiltAt: time.Now(),
	}

	// Publish only after every piece validated; a failed build leaves the
	// previous snapshot in place.
	s.store.Publish(snap)
	log.Printf("published catalog %s (%d items)", version, cat.Len())

	s.archiveSnapshot(ctx, cat)

	return snap, nil
}

// --------------------------------------------------
// Full refresh: pull POS items, upsert, rebuild
// --------------------------------------------------
func (s *Service) RefreshFromPOS(ctx context.Context) (*Snapshot, error) {

	posItems, err := s.source.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("pos pull: %w", err)
	}
	if len(posItems) == 0 {
		return nil, fmt.Errorf("pos returned no items, keeping current catalog")
	}

	rows := make([]catalog.ItemRow, 0, len(posItems))
	for _, it := range posItems {
		rows = append(rows, catalog.ItemRow{
			ID:         it.VariantID,
			Name:       it.Name,
			Category:   mapCategory(it.CategoryName),
			PriceCents: it.PriceCents,
		})
	}

	if err := s.catRepo.UpsertItems(ctx, rows); err != nil {
		return nil, fmt.Errorf("upsert items: %w", err)
	}

	return s.Rebuild(ctx)
}

func (s *Service) archiveSnapshot(ctx context.Context, cat *catalog.Catalog) {
	if s.archive == nil {
		return
	}

	body, err := json.Marshal(cat.Items())
	if err != nil {
		log.Printf("snapshot archive marshal failed: %v", err)
		return
	}

	key := fmt.Sprintf("catalogs/%s.json", cat.Version())
	if _, err := s.archive.Put(ctx, key, body, "application/json"); err != nil {
		log.Printf("snapshot archive upload failed: %v", err)
	}
}

// --------------------------------------------------
// Background worker
// --------------------------------------------------

// RunWorker refreshes the catalog from the POS on a fixed interval until the
// context is canceled. Failed refreshes keep the current snapshot.
func (s *Service) RunWorker(ctx context.Context, interval time.Duration) {
	log.Printf("catalog refresh worker started (every %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("catalog refresh worker stopped")
			return
		case <-ticker.C:
			if _, err := s.RefreshFromPOS(ctx); err != nil {
				log.Printf("catalog refresh failed: %v", err)
			}
		}
	}
}

// mapCategory folds POS category names onto the fixed taxonomy.
func mapCategory(posCategory string) string {
	c := strings.ToLower(posCategory)
	switch {
	case strings.Contains(c, "mini"):
		return string(catalog.CategoryMiniCombinacion)
	case strings.Contains(c, "combinacion"):
		return string(catalog.CategoryCombinacion)
	case strings.Contains(c, "acompanante"), strings.Contains(c, "acompañante"):
		return string(catalog.CategoryAcompanante)
	case strings.Contains(c, "adicional"):
		return string(catalog.CategoryAdicional)
	case strings.Contains(c, "sopa"):
		return string(catalog.CategorySopa)
	default:
		return string(catalog.CategoryOther)
	}
}
