package fine

import "github.com/shopspring/decimal"

// ListResponse is the staff fine listing
type ListResponse struct {
	Fines   []*View `json:"fines"`
	Summary *Totals `json:"summary"`
}

// MySummary totals the fines on a reader's card. Total is the number of fines;
// the amounts are money.
type MySummary struct {
	Total       int             `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Pending     decimal.Decimal `json:"pending"`
	Paid        decimal.Decimal `json:"paid"`
}

// MyFinesResponse is returned by GET /fines/my
type MyFinesResponse struct {
	Fines   []*View    `json:"fines"`
	Summary *MySummary `json:"summary"`
}

// MaterializeResponse reports how many overdue fines were created
type MaterializeResponse struct {
	Created int `json:"created"`
}

// PayAllResponse reports how many fines a bulk payment settled
type PayAllResponse struct {
	Updated int64 `json:"updated"`
}

func toMyFinesResponse(m *MyFines) *MyFinesResponse {
	return &MyFinesResponse{
		Fines: m.Fines,
		Summary: &MySummary{
			Total:       len(m.Fines),
			TotalAmount: m.Pending.Add(m.Paid),
			Pending:     m.Pending,
			Paid:        m.Paid,
		},
	}
}
