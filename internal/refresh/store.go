package refresh

import (
	"sync/atomic"
	"time"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/alias"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
)

// Snapshot is one fully-built, internally consistent menu view: the catalog,
// the alias index built from it, and the rule set validated against it.
// A snapshot is never modified after publish.
type Snapshot struct {
	Catalog *catalog.Catalog
	Index   *alias.Index
	Rules   *modifier.RuleSet
	BuiltAt time.Time
}

// Store publishes snapshots with swap-the-reference semantics: readers
// always see either the previous complete snapshot or the next one, never a
// half-built view. In-flight orders keep the snapshot they resolved against.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store { return &Store{} }

// Current returns the latest published snapshot, or nil before first publish.
func (s *Store) Current() *Snapshot { return s.current.Load() }

// Publish atomically replaces the current snapshot.
func (s *Store) Publish(snap *Snapshot) { s.current.Store(snap) }
