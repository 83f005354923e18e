package borrow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository reads borrow requests for the settlement features
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new borrow repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a borrow request by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Request, error) {
	query := `
		SELECT id, library_card_id, due_date, status, created_at
		FROM borrow_requests
		WHERE id = $1
	`

	req := &Request{}
	if err := r.db.GetContext(ctx, req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get borrow request: %w", err)
	}

	return req, nil
}

// ListOverdueWithoutFines returns overdue borrows that have no fine of any kind,
// each paired with its first detail line and that copy's price
func (r *Repository) ListOverdueWithoutFines(ctx context.Context) ([]*OverdueCandidate, error) {
	query := `
		SELECT b.id AS borrow_request_id, b.library_card_id, b.due_date,
		       d.book_copy_id, bc.price
		FROM borrow_requests b
		LEFT JOIN LATERAL (
			SELECT bd.book_copy_id
			FROM borrow_details bd
			WHERE bd.borrow_request_id = b.id
			ORDER BY bd.id
			LIMIT 1
		) d ON TRUE
		LEFT JOIN book_copies bc ON bc.id = d.book_copy_id
		WHERE b.status = $1
		  AND NOT EXISTS (SELECT 1 FROM fines f WHERE f.borrow_request_id = b.id)
		ORDER BY b.id
	`

	var candidates []*OverdueCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, StatusOverdue); err != nil {
		return nil, fmt.Errorf("failed to list overdue borrows: %w", err)
	}

	return candidates, nil
}

// CountActiveByCard counts borrows of a card whose books have not come back
func (r *Repository) CountActiveByCard(ctx context.Context, cardID int64) (int, error) {
	statuses := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		statuses[i] = string(s)
	}

	query := `SELECT COUNT(*) FROM borrow_requests WHERE library_card_id = $1 AND status = ANY($2)`

	var count int
	if err := r.db.QueryRowContext(ctx, query, cardID, pq.Array(statuses)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active borrows: %w", err)
	}

	return count, nil
}
