package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates or updates the database schema
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	// -------------------------------
	// MENU ITEMS (mirrored from the POS, enriched by hand)
	// -------------------------------
	menuItemsSQL := `
		CREATE TABLE IF NOT EXISTS menu_items (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(50) NOT NULL,
			price_cents BIGINT NOT NULL DEFAULT 0,
			default_sides TEXT[] NOT NULL DEFAULT '{}',
			variants JSONB NOT NULL DEFAULT '[]',
			piece_count INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, menuItemsSQL); err != nil {
		return err
	}

	// -------------------------------
	// CURATED ALIASES
	// -------------------------------
	menuAliasesSQL := `
		CREATE TABLE IF NOT EXISTS menu_aliases (
			alias VARCHAR(255) NOT NULL,
			lang VARCHAR(8) NOT NULL DEFAULT 'es',
			item_id VARCHAR(64) NULL,
			rule_id VARCHAR(64) NULL,
			PRIMARY KEY (alias, lang)
		)
	`
	if _, err := db.Exec(ctx, menuAliasesSQL); err != nil {
		return err
	}

	// -------------------------------
	// MODIFIER RULES
	// -------------------------------
	modifierRulesSQL := `
		CREATE TABLE IF NOT EXISTS modifier_rules (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			class VARCHAR(20) NOT NULL,
			categories TEXT[] NOT NULL DEFAULT '{}',
			delta_cents BIGINT NOT NULL DEFAULT 0,
			side_item_id VARCHAR(64) NULL,
			part BOOLEAN NOT NULL DEFAULT FALSE
		)
	`
	if _, err := db.Exec(ctx, modifierRulesSQL); err != nil {
		return err
	}

	// -------------------------------
	// RECEIPT LOG
	// -------------------------------
	receiptsSQL := `
		CREATE TABLE IF NOT EXISTS receipts (
			id UUID PRIMARY KEY,
			customer_phone VARCHAR(32) NOT NULL,
			pos_receipt_id VARCHAR(64) NOT NULL,
			subtotal_cents BIGINT NOT NULL,
			tax_cents BIGINT NOT NULL,
			total_cents BIGINT NOT NULL,
			catalog_version VARCHAR(64) NOT NULL,
			lines JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, receiptsSQL); err != nil {
		return err
	}

	receiptsIndexSQL := `
		CREATE INDEX IF NOT EXISTS receipts_customer_phone_idx
		ON receipts (customer_phone, created_at DESC)
	`
	if _, err := db.Exec(ctx, receiptsIndexSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
