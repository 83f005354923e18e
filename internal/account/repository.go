package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads staff and reader profiles
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new account repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetStaffByAccountID returns the staff profile of an account, or nil when there is none
func (r *Repository) GetStaffByAccountID(ctx context.Context, accountID int64) (*Staff, error) {
	query := `
		SELECT id, account_id, full_name
		FROM staff
		WHERE account_id = $1
	`

	staff := &Staff{}
	if err := r.db.GetContext(ctx, staff, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}

	return staff, nil
}

// GetReaderByAccountID returns the reader profile of an account with its card, or nil when there is none
func (r *Repository) GetReaderByAccountID(ctx context.Context, accountID int64) (*Reader, error) {
	query := `
		SELECT r.id, r.account_id, r.full_name, r.phone, c.id AS library_card_id
		FROM readers r
		LEFT JOIN library_cards c ON c.reader_id = r.id
		WHERE r.account_id = $1
	`

	reader := &Reader{}
	if err := r.db.GetContext(ctx, reader, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reader: %w", err)
	}

	return reader, nil
}
