package catalog

import "fmt"

// LoadError means the raw menu definition cannot become a catalog.
// A catalog that fails to load must never be published.
type LoadError struct {
	ItemID string
	Detail string
}

func (e *LoadError) Error() string {
	if e.ItemID == "" {
		return "catalog load: " + e.Detail
	}
	return fmt.Sprintf("catalog load: item %s: %s", e.ItemID, e.Detail)
}

// Catalog is an immutable, versioned view of the menu. Refresh builds a
// brand-new instance and swaps the shared reference; nothing mutates a
// catalog after Load returns.
type Catalog struct {
	version string
	items   map[string]Item
	order   []string
}

// Load validates raw item rows into a catalog. It fails on missing required
// fields, unknown categories, negative prices, duplicate ids, and default
// side references that don't resolve within the same set of rows.
func Load(version string, rows []ItemRow) (*Catalog, error) {
	if version == "" {
		return nil, &LoadError{Detail: "empty version"}
	}

	c := &Catalog{
		version: version,
		items:   make(map[string]Item, len(rows)),
		order:   make([]string, 0, len(rows)),
	}

	for _, row := range rows {
		if row.ID == "" {
			return nil, &LoadError{Detail: "item without id"}
		}
		if row.Name == "" {
			return nil, &LoadError{ItemID: row.ID, Detail: "missing name"}
		}
		if !validCategories[Category(row.Category)] {
			return nil, &LoadError{ItemID: row.ID, Detail: "unknown category " + row.Category}
		}
		if row.PriceCents < 0 {
			return nil, &LoadError{ItemID: row.ID, Detail: "negative price"}
		}
		if row.PieceCount < 0 {
			return nil, &LoadError{ItemID: row.ID, Detail: "negative piece count"}
		}
		if _, dup := c.items[row.ID]; dup {
			return nil, &LoadError{ItemID: row.ID, Detail: "duplicate id"}
		}

		for _, v := range row.Variants {
			if v.Label == "" {
				return nil, &LoadError{ItemID: row.ID, Detail: "variant without label"}
			}
			if v.PriceCents < 0 {
				return nil, &LoadError{ItemID: row.ID, Detail: "negative variant price"}
			}
		}

		c.items[row.ID] = Item{
			ID:           row.ID,
			Name:         row.Name,
			Category:     Category(row.Category),
			PriceCents:   row.PriceCents,
			DefaultSides: append([]string(nil), row.DefaultSides...),
			Variants:     append([]Variant(nil), row.Variants...),
			PieceCount:   row.PieceCount,
		}
		c.order = append(c.order, row.ID)
	}

	// Default sides must resolve inside the same catalog version.
	for _, id := range c.order {
		for _, side := range c.items[id].DefaultSides {
			if _, ok := c.items[side]; !ok {
				return nil, &LoadError{ItemID: id, Detail: "dangling default side " + side}
			}
		}
	}

	return c, nil
}

// Version identifies this catalog build.
func (c *Catalog) Version() string { return c.version }

// Lookup returns the item for id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns all items in load order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Len reports the number of items.
func (c *Catalog) Len() int { return len(c.order) }
