package deposit

import "github.com/shopspring/decimal"

// CreateRequest is the body of POST /deposits and POST /deposits/refund
type CreateRequest struct {
	LibraryCardID int64           `json:"library_card_id"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         *string         `json:"notes,omitempty"`
}

// MyDepositsResponse is returned by GET /deposits/my
type MyDepositsResponse struct {
	Transactions  []*View         `json:"transactions"`
	Balance       decimal.Decimal `json:"balance"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	Consistent    bool            `json:"consistent"`
}

// ReconciliationResponse lists cards whose balance disagrees with the ledger
type ReconciliationResponse struct {
	Consistent    bool                  `json:"consistent"`
	Discrepancies []*DiscrepancyResponse `json:"discrepancies"`
}

// DiscrepancyResponse is one mismatching card
type DiscrepancyResponse struct {
	*Discrepancy
	Difference decimal.Decimal `json:"difference"`
}

func toMyDepositsResponse(m *MyDeposits) *MyDepositsResponse {
	return &MyDepositsResponse{
		Transactions:  m.Transactions,
		Balance:       m.Balance,
		StoredBalance: m.StoredBalance,
		Consistent:    m.Consistent(),
	}
}

func toReconciliationResponse(found []*Discrepancy) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		Consistent:    len(found) == 0,
		Discrepancies: make([]*DiscrepancyResponse, 0, len(found)),
	}
	for _, d := range found {
		resp.Discrepancies = append(resp.Discrepancies, &DiscrepancyResponse{Discrepancy: d, Difference: d.Difference()})
	}
	return resp
}
