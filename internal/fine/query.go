package fine

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

var dialect = goqu.Dialect("postgres")

var viewColumns = []interface{}{
	goqu.I("f.id"),
	goqu.I("f.borrow_request_id"),
	goqu.I("b.library_card_id"),
	goqu.I("f.book_copy_id"),
	goqu.I("f.amount"),
	goqu.I("f.reason"),
	goqu.I("f.kind"),
	goqu.I("f.status"),
	goqu.I("f.paid_date"),
	goqu.I("f.collected_by"),
	goqu.I("f.created_at"),
	goqu.I("c.card_number"),
	goqu.I("r.id").As("reader_id"),
	goqu.I("r.full_name").As("reader_name"),
	goqu.I("r.phone").As("reader_phone"),
	goqu.I("b.due_date"),
	goqu.I("b.status").As("borrow_status"),
	goqu.I("bk.title").As("book_title"),
	goqu.I("s.full_name").As("collector_name"),
}

// viewQuery selects fines with every association the desk screens display
func viewQuery() *goqu.SelectDataset {
	return dialect.From(goqu.T("fines").As("f")).Prepared(true).
		Join(goqu.T("borrow_requests").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("f.borrow_request_id")))).
		LeftJoin(goqu.T("library_cards").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("b.library_card_id")))).
		LeftJoin(goqu.T("readers").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("c.reader_id")))).
		LeftJoin(goqu.T("book_copies").As("bc"), goqu.On(goqu.I("bc.id").Eq(goqu.I("f.book_copy_id")))).
		LeftJoin(goqu.T("book_editions").As("be"), goqu.On(goqu.I("be.id").Eq(goqu.I("bc.book_edition_id")))).
		LeftJoin(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("be.book_id")))).
		LeftJoin(goqu.T("staff").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("f.collected_by")))).
		Select(viewColumns...).
		Order(goqu.I("f.created_at").Desc(), goqu.I("f.id").Desc())
}

func listSQL(filter ListFilter) (string, []interface{}, error) {
	ds := viewQuery()
	if filter.Status != "" {
		ds = ds.Where(goqu.I("f.status").Eq(string(filter.Status)))
	}
	return ds.Limit(uint(filter.Limit)).Offset(uint(filter.Offset)).ToSQL()
}

func countSQL(filter ListFilter) (string, []interface{}, error) {
	ds := dialect.From(goqu.T("fines").As("f")).Prepared(true).Select(goqu.COUNT("*"))
	if filter.Status != "" {
		ds = ds.Where(goqu.I("f.status").Eq(string(filter.Status)))
	}
	return ds.ToSQL()
}

func byCardSQL(cardID int64) (string, []interface{}, error) {
	return viewQuery().Where(goqu.I("b.library_card_id").Eq(cardID)).ToSQL()
}

func byBorrowSQL(borrowRequestID int64) (string, []interface{}, error) {
	return viewQuery().Where(goqu.I("f.borrow_request_id").Eq(borrowRequestID)).ToSQL()
}
