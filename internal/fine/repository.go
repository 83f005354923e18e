package fine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fkhayef/library/internal/database"
)

// Repository handles fine data persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new fine repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const fineColumns = `f.id, f.borrow_request_id, b.library_card_id, f.book_copy_id, f.amount, f.reason,
	f.kind, f.status, f.paid_date, f.collected_by, f.created_at`

// InsertOverdue stores a materialized overdue fine. It reports false when the borrow
// already has one; the partial unique index on fines(borrow_request_id) decides.
func (r *Repository) InsertOverdue(ctx context.Context, f *Fine) (bool, error) {
	query := `
		INSERT INTO fines (borrow_request_id, book_copy_id, amount, reason, kind, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		f.BorrowRequestID,
		f.BookCopyID,
		f.Amount,
		f.Reason,
		KindOverdue,
		StatusPending,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create fine: %w", err)
	}

	f.Kind = KindOverdue
	f.Status = StatusPending
	return true, nil
}

// GetByID retrieves a fine by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Fine, error) {
	query := `
		SELECT ` + fineColumns + `
		FROM fines f
		JOIN borrow_requests b ON b.id = f.borrow_request_id
		WHERE f.id = $1
	`

	f := &Fine{}
	if err := r.db.GetContext(ctx, f, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fine: %w", err)
	}

	return f, nil
}

// List retrieves a page of fines newest first, with the total matching the filter
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*View, int, error) {
	cntSQL, cntArgs, err := countSQL(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build fine count: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, cntSQL, cntArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count fines: %w", err)
	}

	query, args, err := listSQL(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build fine list: %w", err)
	}

	fines := []*View{}
	if err := r.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list fines: %w", err)
	}

	return fines, total, nil
}

// Totals sums pending and paid amounts across every fine
func (r *Repository) Totals(ctx context.Context) (*Totals, error) {
	query := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0) AS total_pending,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) AS total_paid
		FROM fines
	`

	totals := &Totals{}
	if err := r.db.GetContext(ctx, totals, query); err != nil {
		return nil, fmt.Errorf("failed to sum fines: %w", err)
	}

	return totals, nil
}

// ListByCard retrieves every fine on borrows of a library card
func (r *Repository) ListByCard(ctx context.Context, cardID int64) ([]*View, error) {
	query, args, err := byCardSQL(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to build card fine list: %w", err)
	}

	fines := []*View{}
	if err := r.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list card fines: %w", err)
	}

	return fines, nil
}

// ListByBorrow retrieves every fine on one borrow request
func (r *Repository) ListByBorrow(ctx context.Context, borrowRequestID int64) ([]*View, error) {
	query, args, err := byBorrowSQL(borrowRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to build borrow fine list: %w", err)
	}

	fines := []*View{}
	if err := r.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list borrow fines: %w", err)
	}

	return fines, nil
}

// MarkPaid settles a pending fine. It returns nil when the fine is missing or no longer pending.
func (r *Repository) MarkPaid(ctx context.Context, id, staffID int64, paidAt time.Time) (*Fine, error) {
	query := `
		UPDATE fines f
		SET status = $2, paid_date = $3, collected_by = $4
		FROM borrow_requests b
		WHERE f.id = $1 AND f.status = $5 AND b.id = f.borrow_request_id
		RETURNING ` + fineColumns

	f := &Fine{}
	if err := r.db.GetContext(ctx, f, query, id, StatusPaid, paidAt, staffID, StatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pay fine: %w", err)
	}

	return f, nil
}

// MarkAllPaid settles every pending fine of a borrow and returns how many changed
func (r *Repository) MarkAllPaid(ctx context.Context, borrowRequestID, staffID int64, paidAt time.Time) (int64, error) {
	query := `
		UPDATE fines
		SET status = $2, paid_date = $3, collected_by = $4
		WHERE borrow_request_id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, borrowRequestID, StatusPaid, paidAt, staffID, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to pay borrow fines: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return updated, nil
}

// DeletePending removes a fine that is still pending and reports whether a row went away
func (r *Repository) DeletePending(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fines WHERE id = $1 AND status = $2`, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete fine: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted > 0, nil
}

// CountPendingByCard counts unpaid fines on borrows of a library card
func (r *Repository) CountPendingByCard(ctx context.Context, cardID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM fines f
		JOIN borrow_requests b ON b.id = f.borrow_request_id
		WHERE b.library_card_id = $1 AND f.status = $2
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, cardID, StatusPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending fines: %w", err)
	}

	return count, nil
}
