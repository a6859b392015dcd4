package modifier

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListRules(ctx context.Context) ([]Rule, error) {

	rows, err := r.db.Query(ctx, `
		SELECT id, name, class, categories, delta_cents, COALESCE(side_item_id, ''), part
		FROM modifier_rules
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule

	for rows.Next() {
		var (
			rule       Rule
			class      string
			categories []string
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&class,
			&categories,
			&rule.DeltaCents,
			&rule.SideItemID,
			&rule.Part,
		); err != nil {
			return nil, err
		}

		rule.Class = Class(class)
		for _, c := range categories {
			rule.Categories = append(rule.Categories, catalog.Category(c))
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}
