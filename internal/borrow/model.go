package borrow

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a borrow request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	StatusRejected Status = "rejected"
	StatusOverdue  Status = "overdue" // set by the circulation desk once the due date has passed
)

// ActiveStatuses are the states in which a book is still out with the reader
var ActiveStatuses = []Status{StatusBorrowed, StatusOverdue}

// Request is a loan of a single book copy against a library card
type Request struct {
	ID            int64      `json:"id" db:"id"`
	LibraryCardID int64      `json:"library_card_id" db:"library_card_id"`
	DueDate       *time.Time `json:"due_date,omitempty" db:"due_date"`
	Status        Status     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// OverdueCandidate is an overdue borrow that has no fine yet, with its first detail line
type OverdueCandidate struct {
	BorrowRequestID int64               `db:"borrow_request_id"`
	LibraryCardID   int64               `db:"library_card_id"`
	DueDate         *time.Time          `db:"due_date"`
	BookCopyID      *int64              `db:"book_copy_id"` // nil when the borrow has no detail lines
	Price           decimal.NullDecimal `db:"price"`
}
