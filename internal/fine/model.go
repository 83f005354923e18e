package fine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the payment state of a fine
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Valid reports whether s is a known fine status
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Kind tells how a fine came to exist
type Kind string

const (
	KindOverdue Kind = "overdue" // created by the materializer, at most one per borrow
	KindManual  Kind = "manual"  // column default for fines entered outside this service; never created here
)

// Fine is a monetary penalty on one borrow request and book copy
type Fine struct {
	ID              int64           `json:"id" db:"id"`
	BorrowRequestID int64           `json:"borrow_request_id" db:"borrow_request_id"`
	LibraryCardID   int64           `json:"library_card_id" db:"library_card_id"`
	BookCopyID      *int64          `json:"book_copy_id,omitempty" db:"book_copy_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Reason          string          `json:"reason" db:"reason"`
	Kind            Kind            `json:"kind" db:"kind"`
	Status          Status          `json:"status" db:"status"`
	PaidDate        *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	CollectedBy     *int64          `json:"collected_by,omitempty" db:"collected_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// View is a fine joined with its borrow, card, reader, book and collector
type View struct {
	Fine
	CardNumber    *string    `json:"card_number,omitempty" db:"card_number"`
	ReaderID      *int64     `json:"reader_id,omitempty" db:"reader_id"`
	ReaderName    *string    `json:"reader_name,omitempty" db:"reader_name"`
	ReaderPhone   *string    `json:"reader_phone,omitempty" db:"reader_phone"`
	DueDate       *time.Time `json:"due_date,omitempty" db:"due_date"`
	BorrowStatus  *string    `json:"borrow_status,omitempty" db:"borrow_status"`
	BookTitle     *string    `json:"book_title,omitempty" db:"book_title"`
	CollectorName *string    `json:"collector_name,omitempty" db:"collector_name"`
}

// Totals are the pending and paid sums over every fine
type Totals struct {
	TotalPending decimal.Decimal `json:"total_pending" db:"total_pending"`
	TotalPaid    decimal.Decimal `json:"total_paid" db:"total_paid"`
}

// ListFilter narrows and pages the staff fine listing
type ListFilter struct {
	Status Status // empty means all
	Limit  int
	Offset int
}
