package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS staff (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS readers (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		id_card_number VARCHAR(32)
	)`,
	`CREATE TABLE IF NOT EXISTS library_cards (
		id BIGSERIAL PRIMARY KEY,
		reader_id BIGINT NOT NULL UNIQUE REFERENCES readers(id),
		card_number VARCHAR(32) NOT NULL UNIQUE,
		deposit_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS book_editions (
		id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books(id)
	)`,
	`CREATE TABLE IF NOT EXISTS book_copies (
		id BIGSERIAL PRIMARY KEY,
		book_edition_id BIGINT NOT NULL REFERENCES book_editions(id),
		price NUMERIC(12,2)
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_requests (
		id BIGSERIAL PRIMARY KEY,
		library_card_id BIGINT NOT NULL REFERENCES library_cards(id),
		due_date DATE,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		rejected_at TIMESTAMPTZ,
		reject_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_details (
		id BIGSERIAL PRIMARY KEY,
		borrow_request_id BIGINT NOT NULL REFERENCES borrow_requests(id),
		book_copy_id BIGINT NOT NULL REFERENCES book_copies(id)
	)`,
	`CREATE TABLE IF NOT EXISTS fines (
		id BIGSERIAL PRIMARY KEY,
		borrow_request_id BIGINT NOT NULL REFERENCES borrow_requests(id),
		book_copy_id BIGINT REFERENCES book_copies(id),
		amount NUMERIC(12,2) NOT NULL,
		reason TEXT NOT NULL,
		kind VARCHAR(16) NOT NULL DEFAULT 'manual',
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		paid_date TIMESTAMPTZ,
		collected_by BIGINT REFERENCES staff(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// at most one materialized overdue fine per borrow
	`CREATE UNIQUE INDEX IF NOT EXISTS fines_overdue_borrow_uniq
		ON fines (borrow_request_id) WHERE kind = 'overdue'`,
	`CREATE INDEX IF NOT EXISTS fines_status_idx ON fines (status)`,
	`CREATE TABLE IF NOT EXISTS deposit_transactions (
		id BIGSERIAL PRIMARY KEY,
		reference UUID NOT NULL UNIQUE,
		library_card_id BIGINT NOT NULL REFERENCES library_cards(id),
		staff_id BIGINT NOT NULL REFERENCES staff(id),
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		type VARCHAR(16) NOT NULL,
		transaction_date TIMESTAMPTZ NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS deposit_transactions_card_idx ON deposit_transactions (library_card_id)`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		setting_key VARCHAR(64) PRIMARY KEY,
		setting_value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		recipient_id BIGINT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		related_entity_type VARCHAR(32),
		related_entity_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables the service relies on
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
