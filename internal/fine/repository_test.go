package fine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/library/internal/database/dbtest"
)

var dueDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestRepository_InsertOverdueOncePerBorrow(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			cardID := dbtest.Card(t, db, 20, "0")
			copyID := dbtest.Copy(t, db, "Dune", "50000")
			borrowID := dbtest.Borrow(t, db, cardID, "overdue", dueDate, copyID)

			first := &Fine{BorrowRequestID: borrowID, BookCopyID: &copyID, Amount: decimal.NewFromInt(7500), Reason: OverdueReason(3, 5)}
			created, err := repo.InsertOverdue(ctx, first)
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotZero(t, first.ID)

			again := &Fine{BorrowRequestID: borrowID, BookCopyID: &copyID, Amount: decimal.NewFromInt(10000), Reason: OverdueReason(4, 5)}
			created, err = repo.InsertOverdue(ctx, again)
			require.NoError(t, err)
			assert.False(t, created)

			assert.Equal(t, 1, dbtest.Count(t, db, "fines", "borrow_request_id = $1", borrowID))

			// manual fines are not limited by the overdue index
			dbtest.Fine(t, db, borrowID, "100", string(KindManual), string(StatusPending))
			assert.Equal(t, 2, dbtest.Count(t, db, "fines", "borrow_request_id = $1", borrowID))

			stored, err := repo.GetByID(ctx, first.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, cardID, stored.LibraryCardID)
			assert.Equal(t, KindOverdue, stored.Kind)
			assert.Equal(t, StatusPending, stored.Status)
			assert.True(t, decimal.NewFromInt(7500).Equal(stored.Amount))
		})
	}
}

func TestRepository_PendingGuards(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			staffID := dbtest.Staff(t, db, 10)
			cardID := dbtest.Card(t, db, 20, "0")
			borrowID := dbtest.Borrow(t, db, cardID, "overdue", dueDate)
			fineID := dbtest.Fine(t, db, borrowID, "7500", string(KindOverdue), string(StatusPending))
			paidAt := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)

			paid, err := repo.MarkPaid(ctx, fineID, staffID, paidAt)
			require.NoError(t, err)
			require.NotNil(t, paid)
			assert.Equal(t, StatusPaid, paid.Status)
			assert.Equal(t, cardID, paid.LibraryCardID)
			require.NotNil(t, paid.CollectedBy)
			assert.Equal(t, staffID, *paid.CollectedBy)
			require.NotNil(t, paid.PaidDate)
			assert.True(t, paidAt.Equal(*paid.PaidDate))

			second, err := repo.MarkPaid(ctx, fineID, staffID, paidAt)
			require.NoError(t, err)
			assert.Nil(t, second)

			deleted, err := repo.DeletePending(ctx, fineID)
			require.NoError(t, err)
			assert.False(t, deleted, "paid fines stay")
			assert.Equal(t, 1, dbtest.Count(t, db, "fines", "id = $1", fineID))

			pendingID := dbtest.Fine(t, db, borrowID, "10", string(KindManual), string(StatusPending))
			deleted, err = repo.DeletePending(ctx, pendingID)
			require.NoError(t, err)
			assert.True(t, deleted)

			missing, err := repo.MarkPaid(ctx, pendingID, staffID, paidAt)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestRepository_MarkAllPaidAndCounts(t *testing.T) {
	db := dbtest.Open(t, dbtest.Drivers[0])
	repo := NewRepository(db)
	ctx := context.Background()

	staffID := dbtest.Staff(t, db, 10)
	cardID := dbtest.Card(t, db, 20, "0")
	otherCard := dbtest.Card(t, db, 21, "0")
	borrowID := dbtest.Borrow(t, db, cardID, "overdue", dueDate)
	otherBorrow := dbtest.Borrow(t, db, cardID, "overdue", dueDate)
	foreignBorrow := dbtest.Borrow(t, db, otherCard, "overdue", dueDate)

	dbtest.Fine(t, db, borrowID, "10", string(KindManual), string(StatusPending))
	dbtest.Fine(t, db, borrowID, "20", string(KindManual), string(StatusPending))
	dbtest.Fine(t, db, borrowID, "30", string(KindManual), string(StatusPaid))
	dbtest.Fine(t, db, otherBorrow, "40", string(KindManual), string(StatusPending))
	dbtest.Fine(t, db, foreignBorrow, "50", string(KindManual), string(StatusPending))

	n, err := repo.CountPendingByCard(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(totals.TotalPending), totals.TotalPending.String())
	assert.True(t, decimal.NewFromInt(30).Equal(totals.TotalPaid), totals.TotalPaid.String())

	updated, err := repo.MarkAllPaid(ctx, borrowID, staffID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = repo.MarkAllPaid(ctx, borrowID, staffID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, updated)

	n, err = repo.CountPendingByCard(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	totals, err = repo.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(90).Equal(totals.TotalPending))
	assert.True(t, decimal.NewFromInt(60).Equal(totals.TotalPaid))
}

func TestRepository_TotalsOnEmptyTable(t *testing.T) {
	db := dbtest.Open(t, dbtest.Drivers[1])

	totals, err := NewRepository(db).Totals(context.Background())
	require.NoError(t, err)
	assert.True(t, totals.TotalPending.IsZero())
	assert.True(t, totals.TotalPaid.IsZero())
}

func TestRepository_ListViews(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			cardID := dbtest.Card(t, db, 20, "0")
			copyID := dbtest.Copy(t, db, "Dune", "50000")
			borrowID := dbtest.Borrow(t, db, cardID, "overdue", dueDate, copyID)

			overdue := &Fine{BorrowRequestID: borrowID, BookCopyID: &copyID, Amount: decimal.NewFromInt(7500), Reason: OverdueReason(3, 5)}
			_, err := repo.InsertOverdue(ctx, overdue)
			require.NoError(t, err)
			dbtest.Fine(t, db, borrowID, "10", string(KindManual), string(StatusPaid))

			all, total, err := repo.List(ctx, ListFilter{Limit: 20})
			require.NoError(t, err)
			assert.Equal(t, 2, total)
			require.Len(t, all, 2)

			pending, total, err := repo.List(ctx, ListFilter{Status: StatusPending, Limit: 20})
			require.NoError(t, err)
			assert.Equal(t, 1, total)
			require.Len(t, pending, 1)
			v := pending[0]
			assert.Equal(t, overdue.ID, v.ID)
			require.NotNil(t, v.BookTitle)
			assert.Equal(t, "Dune", *v.BookTitle)
			require.NotNil(t, v.CardNumber)
			assert.Equal(t, "LC-000020", *v.CardNumber)
			require.NotNil(t, v.ReaderName)
			assert.Nil(t, v.CollectorName)

			byCard, err := repo.ListByCard(ctx, cardID)
			require.NoError(t, err)
			assert.Len(t, byCard, 2)

			byBorrow, err := repo.ListByBorrow(ctx, borrowID)
			require.NoError(t, err)
			assert.Len(t, byBorrow, 2)
		})
	}
}
