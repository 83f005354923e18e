package deposit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/library/internal/database/dbtest"
)

func newEntry(cardID, staffID int64, typ Type, amt string) *Transaction {
	return &Transaction{
		Reference:       uuid.Must(uuid.NewV7()),
		LibraryCardID:   cardID,
		StaffID:         staffID,
		Amount:          decimal.RequireFromString(amt),
		Type:            typ,
		TransactionDate: now,
	}
}

func storedBalance(t *testing.T, repo *Repository, cardID int64) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	require.NoError(t, repo.db.Get(&balance, `SELECT deposit_amount FROM library_cards WHERE id = $1`, cardID))
	return balance
}

func TestRepository_RecordMovesBalance(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			staffID := dbtest.Staff(t, db, 10)
			cardID := dbtest.Card(t, db, 20, "0")

			dep := newEntry(cardID, staffID, TypeDeposit, "100000")
			require.NoError(t, repo.Record(ctx, dep))
			assert.NotZero(t, dep.ID)
			assert.True(t, decimal.NewFromInt(100000).Equal(storedBalance(t, repo, cardID)))

			refund := newEntry(cardID, staffID, TypeRefund, "30000")
			refund.Notes = ptr(DefaultRefundNote)
			require.NoError(t, repo.Record(ctx, refund))
			assert.True(t, decimal.NewFromInt(70000).Equal(storedBalance(t, repo, cardID)))

			txs, err := repo.ListByCard(ctx, cardID)
			require.NoError(t, err)
			require.Len(t, txs, 2)
			assert.Equal(t, refund.Reference, txs[0].Reference, "newest first")
			assert.True(t, decimal.NewFromInt(70000).Equal(Balance(txs)))
			require.NotNil(t, txs[0].StaffName)
			require.NotNil(t, txs[0].Notes)
			assert.Equal(t, DefaultRefundNote, *txs[0].Notes)
		})
	}
}

func TestRepository_RefundAboveBalanceLeavesNoTrace(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			staffID := dbtest.Staff(t, db, 10)
			cardID := dbtest.Card(t, db, 20, "500")

			err := repo.Record(ctx, newEntry(cardID, staffID, TypeRefund, "500.01"))
			assert.ErrorIs(t, err, ErrInsufficientDeposit)

			assert.Zero(t, dbtest.Count(t, db, "deposit_transactions", ""))
			assert.True(t, decimal.NewFromInt(500).Equal(storedBalance(t, repo, cardID)))

			require.NoError(t, repo.Record(ctx, newEntry(cardID, staffID, TypeRefund, "500")))
			assert.True(t, storedBalance(t, repo, cardID).IsZero())
		})
	}
}

func TestRepository_RecordRollsBackOnInsertFailure(t *testing.T) {
	db := dbtest.Open(t, dbtest.Drivers[0])
	repo := NewRepository(db)
	ctx := context.Background()

	cardID := dbtest.Card(t, db, 20, "0")

	// staff 999 does not exist, so the ledger insert fails after the balance moved
	err := repo.Record(ctx, newEntry(cardID, 999, TypeDeposit, "100"))
	require.Error(t, err)

	assert.True(t, storedBalance(t, repo, cardID).IsZero())
	assert.Zero(t, dbtest.Count(t, db, "deposit_transactions", ""))
}

func TestRepository_RecordUnknownCard(t *testing.T) {
	db := dbtest.Open(t, dbtest.Drivers[1])
	repo := NewRepository(db)

	staffID := dbtest.Staff(t, db, 10)
	err := repo.Record(context.Background(), newEntry(404, staffID, TypeDeposit, "100"))
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestRepository_ListAndDiscrepancies(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			staffID := dbtest.Staff(t, db, 10)
			cardID := dbtest.Card(t, db, 20, "0")
			otherCard := dbtest.Card(t, db, 21, "0")

			require.NoError(t, repo.Record(ctx, newEntry(cardID, staffID, TypeDeposit, "100")))
			require.NoError(t, repo.Record(ctx, newEntry(otherCard, staffID, TypeDeposit, "200")))
			require.NoError(t, repo.Record(ctx, newEntry(cardID, staffID, TypeRefund, "40")))

			all, total, err := repo.List(ctx, ListFilter{Limit: 20})
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Len(t, all, 3)

			refunds, total, err := repo.List(ctx, ListFilter{Type: TypeRefund, LibraryCardID: &cardID, Limit: 20})
			require.NoError(t, err)
			assert.Equal(t, 1, total)
			require.Len(t, refunds, 1)
			assert.Equal(t, TypeRefund, refunds[0].Type)

			found, err := repo.Discrepancies(ctx)
			require.NoError(t, err)
			assert.Empty(t, found)

			_, err = db.Exec(`UPDATE library_cards SET deposit_amount = 75 WHERE id = $1`, cardID)
			require.NoError(t, err)
			emptyCard := dbtest.Card(t, db, 22, "5")

			found, err = repo.Discrepancies(ctx)
			require.NoError(t, err)
			require.Len(t, found, 2)
			assert.Equal(t, cardID, found[0].LibraryCardID)
			assert.True(t, decimal.NewFromInt(60).Equal(found[0].LedgerBalance))
			assert.True(t, decimal.NewFromInt(15).Equal(found[0].Difference()))
			assert.Equal(t, emptyCard, found[1].LibraryCardID)
			assert.True(t, found[1].LedgerBalance.IsZero())
		})
	}
}
