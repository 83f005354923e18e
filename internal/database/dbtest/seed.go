package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Staff inserts a staff profile for accountID and returns its ID
func Staff(t testing.TB, db *sqlx.DB, accountID int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRow(
		`INSERT INTO staff (account_id, full_name) VALUES ($1, $2) RETURNING id`,
		accountID, fmt.Sprintf("Librarian %d", accountID),
	).Scan(&id))
	return id
}

// Card inserts a reader for accountID with a library card holding balance and returns the card ID
func Card(t testing.TB, db *sqlx.DB, accountID int64, balance string) int64 {
	t.Helper()
	var readerID, cardID int64
	require.NoError(t, db.QueryRow(
		`INSERT INTO readers (account_id, full_name) VALUES ($1, $2) RETURNING id`,
		accountID, fmt.Sprintf("Reader %d", accountID),
	).Scan(&readerID))
	require.NoError(t, db.QueryRow(
		`INSERT INTO library_cards (reader_id, card_number, deposit_amount) VALUES ($1, $2, $3) RETURNING id`,
		readerID, fmt.Sprintf("LC-%06d", accountID), balance,
	).Scan(&cardID))
	return cardID
}

// Copy inserts a book with one edition and one copy. An empty price stores NULL.
func Copy(t testing.TB, db *sqlx.DB, title, price string) int64 {
	t.Helper()
	var bookID, editionID, copyID int64
	require.NoError(t, db.QueryRow(`INSERT INTO books (title) VALUES ($1) RETURNING id`, title).Scan(&bookID))
	require.NoError(t, db.QueryRow(`INSERT INTO book_editions (book_id) VALUES ($1) RETURNING id`, bookID).Scan(&editionID))

	var p *string
	if price != "" {
		p = &price
	}
	require.NoError(t, db.QueryRow(
		`INSERT INTO book_copies (book_edition_id, price) VALUES ($1, $2) RETURNING id`, editionID, p,
	).Scan(&copyID))
	return copyID
}

// Borrow inserts a borrow request with one detail line per copy, in the given order
func Borrow(t testing.TB, db *sqlx.DB, cardID int64, status string, due time.Time, copyIDs ...int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRow(
		`INSERT INTO borrow_requests (library_card_id, due_date, status) VALUES ($1, $2, $3) RETURNING id`,
		cardID, due, status,
	).Scan(&id))
	for _, copyID := range copyIDs {
		_, err := db.Exec(`INSERT INTO borrow_details (borrow_request_id, book_copy_id) VALUES ($1, $2)`, id, copyID)
		require.NoError(t, err)
	}
	return id
}

// Fine inserts a fine directly, bypassing the materializer
func Fine(t testing.TB, db *sqlx.DB, borrowID int64, amount, kind, status string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRow(
		`INSERT INTO fines (borrow_request_id, amount, reason, kind, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		borrowID, amount, "seeded", kind, status,
	).Scan(&id))
	return id
}

// Count returns SELECT COUNT(*) for a table with an optional WHERE clause
func Count(t testing.TB, db *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()
	query := `SELECT COUNT(*) FROM ` + table
	if where != "" {
		query += ` WHERE ` + where
	}
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}
