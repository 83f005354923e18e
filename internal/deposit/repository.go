package deposit

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository handles deposit ledger persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new deposit repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Record appends tx to the ledger and moves the card balance in the same database
// transaction. A refund larger than the stored balance fails with ErrInsufficientDeposit
// and leaves nothing behind.
func (r *Repository) Record(ctx context.Context, t *Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	delta := t.Amount
	guard := decimal.Zero
	if t.Type == TypeRefund {
		delta = t.Amount.Neg()
		guard = t.Amount
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE library_cards
		SET deposit_amount = deposit_amount + $2
		WHERE id = $1 AND deposit_amount >= $3
	`, t.LibraryCardID, delta, guard)
	if err != nil {
		return fmt.Errorf("failed to update card balance: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if updated == 0 {
		if t.Type == TypeRefund {
			return ErrInsufficientDeposit
		}
		return ErrCardNotFound
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO deposit_transactions (reference, library_card_id, staff_id, amount, type, transaction_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`,
		t.Reference,
		t.LibraryCardID,
		t.StaffID,
		t.Amount,
		t.Type,
		t.TransactionDate,
		t.Notes,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deposit transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deposit transaction: %w", err)
	}

	return nil
}

// List retrieves a page of transactions newest first, with the total matching the filter
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*View, int, error) {
	cntSQL, cntArgs, err := countSQL(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build deposit count: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, cntSQL, cntArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count deposit transactions: %w", err)
	}

	query, args, err := listSQL(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build deposit list: %w", err)
	}

	txs := []*View{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list deposit transactions: %w", err)
	}

	return txs, total, nil
}

// ListByCard retrieves the full ledger of one card, newest first
func (r *Repository) ListByCard(ctx context.Context, cardID int64) ([]*View, error) {
	query, args, err := byCardSQL(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to build card ledger: %w", err)
	}

	txs := []*View{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list card ledger: %w", err)
	}

	return txs, nil
}

// Discrepancies lists every card whose stored balance differs from its ledger
func (r *Repository) Discrepancies(ctx context.Context) ([]*Discrepancy, error) {
	query, args, err := discrepancySQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build reconciliation query: %w", err)
	}

	out := []*Discrepancy{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to reconcile deposits: %w", err)
	}

	return out, nil
}
