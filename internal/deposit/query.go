package deposit

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

var dialect = goqu.Dialect("postgres")

func viewQuery() *goqu.SelectDataset {
	return dialect.From(goqu.T("deposit_transactions").As("d")).Prepared(true).
		LeftJoin(goqu.T("library_cards").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("d.library_card_id")))).
		LeftJoin(goqu.T("readers").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("c.reader_id")))).
		LeftJoin(goqu.T("staff").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("d.staff_id")))).
		Select(
			goqu.I("d.id"),
			goqu.I("d.reference"),
			goqu.I("d.library_card_id"),
			goqu.I("d.staff_id"),
			goqu.I("d.amount"),
			goqu.I("d.type"),
			goqu.I("d.transaction_date"),
			goqu.I("d.notes"),
			goqu.I("d.created_at"),
			goqu.I("c.card_number"),
			goqu.I("r.full_name").As("reader_name"),
			goqu.I("s.full_name").As("staff_name"),
		).
		Order(goqu.I("d.transaction_date").Desc(), goqu.I("d.id").Desc())
}

func filtered(ds *goqu.SelectDataset, filter ListFilter) *goqu.SelectDataset {
	if filter.Type != "" {
		ds = ds.Where(goqu.I("d.type").Eq(string(filter.Type)))
	}
	if filter.LibraryCardID != nil {
		ds = ds.Where(goqu.I("d.library_card_id").Eq(*filter.LibraryCardID))
	}
	return ds
}

func listSQL(filter ListFilter) (string, []interface{}, error) {
	return filtered(viewQuery(), filter).Limit(uint(filter.Limit)).Offset(uint(filter.Offset)).ToSQL()
}

func countSQL(filter ListFilter) (string, []interface{}, error) {
	ds := dialect.From(goqu.T("deposit_transactions").As("d")).Prepared(true).Select(goqu.COUNT("*"))
	return filtered(ds, filter).ToSQL()
}

func byCardSQL(cardID int64) (string, []interface{}, error) {
	return viewQuery().Where(goqu.I("d.library_card_id").Eq(cardID)).ToSQL()
}

// discrepancySQL lists cards whose deposit_amount differs from deposits minus refunds
func discrepancySQL() (string, []interface{}, error) {
	ledger := dialect.From("deposit_transactions").
		Select(
			goqu.C("library_card_id"),
			goqu.L("SUM(CASE WHEN type = ? THEN amount ELSE -amount END)", string(TypeDeposit)).As("balance"),
		).
		GroupBy(goqu.C("library_card_id"))

	return dialect.From(goqu.T("library_cards").As("c")).Prepared(true).
		LeftJoin(ledger.As("l"), goqu.On(goqu.I("l.library_card_id").Eq(goqu.I("c.id")))).
		Select(
			goqu.I("c.id").As("library_card_id"),
			goqu.I("c.card_number"),
			goqu.I("c.deposit_amount").As("stored_balance"),
			goqu.COALESCE(goqu.I("l.balance"), 0).As("ledger_balance"),
		).
		Where(goqu.I("c.deposit_amount").Neq(goqu.COALESCE(goqu.I("l.balance"), 0))).
		Order(goqu.I("c.id").Asc()).
		ToSQL()
}
