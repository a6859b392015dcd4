package catalog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// FULL READ (for catalog builds)
// --------------------------------------------------
func (r *PostgresRepository) ListItems(ctx context.Context) ([]ItemRow, error) {

	rows, err := r.db.Query(ctx, `
		SELECT id, name, category, price_cents, default_sides, variants, piece_count
		FROM menu_items
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemRow

	for rows.Next() {
		var (
			row         ItemRow
			variantsRaw []byte
		)
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Category,
			&row.PriceCents,
			&row.DefaultSides,
			&variantsRaw,
			&row.PieceCount,
		); err != nil {
			return nil, err
		}

		if len(variantsRaw) > 0 {
			if err := json.Unmarshal(variantsRaw, &row.Variants); err != nil {
				return nil, err
			}
		}

		items = append(items, row)
	}

	return items, rows.Err()
}

func (r *PostgresRepository) ListAliases(ctx context.Context) ([]AliasRow, error) {

	rows, err := r.db.Query(ctx, `
		SELECT alias, lang, COALESCE(item_id, ''), COALESCE(rule_id, '')
		FROM menu_aliases
		ORDER BY alias
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []AliasRow

	for rows.Next() {
		var a AliasRow
		if err := rows.Scan(&a.Alias, &a.Lang, &a.ItemID, &a.RuleID); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}

	return aliases, rows.Err()
}

// --------------------------------------------------
// POS SYNC (UPSERT, CURATED COLUMNS PRESERVED)
// --------------------------------------------------
func (r *PostgresRepository) UpsertItems(ctx context.Context, items []ItemRow) error {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO menu_items (id, name, category, price_cents, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    category = EXCLUDED.category,
			    price_cents = EXCLUDED.price_cents,
			    updated_at = now()
		`, item.ID, item.Name, item.Category, item.PriceCents)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
