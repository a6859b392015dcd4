package order

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

func (r *PostgresRepository) SaveReceipt(ctx context.Context, receipt *Receipt) error {

	lines, err := json.Marshal(receipt.Lines)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO receipts (
			id,
			customer_phone,
			pos_receipt_id,
			subtotal_cents,
			tax_cents,
			total_cents,
			catalog_version,
			lines,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`,
		receipt.ID,
		receipt.CustomerPhone,
		receipt.PosReceiptID,
		receipt.SubtotalCents,
		receipt.TaxCents,
		receipt.TotalCents,
		receipt.CatalogVersion,
		lines,
	)

	return err
}

func (r *PostgresRepository) ListByPhone(ctx context.Context, phone string, limit int) ([]Receipt, error) {

	rows, err := r.db.Query(ctx, `
		SELECT id, customer_phone, pos_receipt_id, subtotal_cents,
		       tax_cents, total_cents, catalog_version, lines, created_at
		FROM receipts
		WHERE customer_phone = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []Receipt

	for rows.Next() {
		var (
			receipt  Receipt
			linesRaw []byte
		)
		if err := rows.Scan(
			&receipt.ID,
			&receipt.CustomerPhone,
			&receipt.PosReceiptID,
			&receipt.SubtotalCents,
			&receipt.TaxCents,
			&receipt.TotalCents,
			&receipt.CatalogVersion,
			&linesRaw,
			&receipt.CreatedAt,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(linesRaw, &receipt.Lines); err != nil {
			return nil, err
		}

		receipts = append(receipts, receipt)
	}

	return receipts, rows.Err()
}
