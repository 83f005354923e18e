package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository reads library cards
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new card repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const selectCard = `
	SELECT c.id, c.reader_id, r.account_id AS reader_account_id, c.card_number, c.deposit_amount, c.created_at
	FROM library_cards c
	JOIN readers r ON r.id = c.reader_id
`

// GetByID retrieves a card by its ID, or nil when it does not exist
func (r *Repository) GetByID(ctx context.Context, id int64) (*Card, error) {
	c := &Card{}
	if err := r.db.GetContext(ctx, c, selectCard+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get library card: %w", err)
	}
	return c, nil
}

// GetHolderAccountID returns the login account of the card's reader
func (r *Repository) GetHolderAccountID(ctx context.Context, id int64) (int64, bool, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil || c == nil {
		return 0, false, err
	}
	return c.ReaderAccountID, true, nil
}
