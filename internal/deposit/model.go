package deposit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type tells whether money went onto or off a card
type Type string

const (
	TypeDeposit Type = "deposit"
	TypeRefund  Type = "refund"
)

// Valid reports whether t is a known transaction type
func (t Type) Valid() bool {
	return t == TypeDeposit || t == TypeRefund
}

// Transaction is one immutable entry in a card's deposit ledger
type Transaction struct {
	ID              int64           `json:"id" db:"id"`
	Reference       uuid.UUID       `json:"reference" db:"reference"` // printed on the receipt
	LibraryCardID   int64           `json:"library_card_id" db:"library_card_id"`
	StaffID         int64           `json:"staff_id" db:"staff_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Type            Type            `json:"type" db:"type"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// View is a transaction joined with its card, reader and staff member
type View struct {
	Transaction
	CardNumber *string `json:"card_number,omitempty" db:"card_number"`
	ReaderName *string `json:"reader_name,omitempty" db:"reader_name"`
	StaffName  *string `json:"staff_name,omitempty" db:"staff_name"`
}

// ListFilter narrows and pages the staff transaction listing
type ListFilter struct {
	Type          Type   // empty means all
	LibraryCardID *int64 // nil means all cards
	Limit         int
	Offset        int
}

// Discrepancy is a card whose stored balance disagrees with its ledger
type Discrepancy struct {
	LibraryCardID int64           `json:"library_card_id" db:"library_card_id"`
	CardNumber    string          `json:"card_number" db:"card_number"`
	StoredBalance decimal.Decimal `json:"stored_balance" db:"stored_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance" db:"ledger_balance"`
}

// Difference is stored minus ledger
func (d *Discrepancy) Difference() decimal.Decimal {
	return d.StoredBalance.Sub(d.LedgerBalance)
}

// Balance sums a card's ledger: deposits minus refunds
func Balance(txs []*View) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TypeDeposit:
			balance = balance.Add(tx.Amount)
		case TypeRefund:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}
