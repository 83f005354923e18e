package card

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is a reader's library card holding the running deposit balance
type Card struct {
	ID              int64           `json:"id" db:"id"`
	ReaderID        int64           `json:"reader_id" db:"reader_id"`
	ReaderAccountID int64           `json:"-" db:"reader_account_id"`
	CardNumber      string          `json:"card_number" db:"card_number"`
	DepositAmount   decimal.Decimal `json:"deposit_amount" db:"deposit_amount"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
