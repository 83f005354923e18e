package fine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DaysOverdue counts whole calendar days from due to today, both taken at midnight.
// It is zero or negative while the book is not yet late.
func DaysOverdue(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(d).Hours() / 24))
}

// Amount is price × ratePercent / 100 × days, rounded to cents.
// This is the only place a fine amount is computed; clients only format it.
func Amount(price decimal.Decimal, ratePercent, days int) decimal.Decimal {
	return price.
		Mul(decimal.NewFromInt(int64(ratePercent))).
		Div(hundred).
		Mul(decimal.NewFromInt(int64(days))).
		Round(2)
}

// OverdueReason is the human readable reason stored on materialized fines
func OverdueReason(days, ratePercent int) string {
	return fmt.Sprintf("Overdue %d days (Rate %d%%)", days, ratePercent)
}
