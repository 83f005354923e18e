package borrow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/library/internal/database/dbtest"
)

func TestRepository_ListOverdueWithoutFines(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			cardID := dbtest.Card(t, db, 20, "0")
			due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

			first := dbtest.Copy(t, db, "Dune", "50000")
			second := dbtest.Copy(t, db, "Emma", "90000")
			withDetails := dbtest.Borrow(t, db, cardID, string(StatusOverdue), due, first, second)
			noDetails := dbtest.Borrow(t, db, cardID, string(StatusOverdue), due)
			unpriced := dbtest.Borrow(t, db, cardID, string(StatusOverdue), due, dbtest.Copy(t, db, "Ulysses", ""))

			fined := dbtest.Borrow(t, db, cardID, string(StatusOverdue), due, dbtest.Copy(t, db, "Ivanhoe", "100"))
			dbtest.Fine(t, db, fined, "5", "manual", "paid")
			dbtest.Borrow(t, db, cardID, string(StatusBorrowed), due, dbtest.Copy(t, db, "Kim", "100"))

			got, err := repo.ListOverdueWithoutFines(ctx)
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, withDetails, got[0].BorrowRequestID)
			assert.Equal(t, cardID, got[0].LibraryCardID)
			require.NotNil(t, got[0].BookCopyID)
			assert.Equal(t, first, *got[0].BookCopyID, "first detail line wins")
			assert.True(t, got[0].Price.Valid)
			assert.True(t, decimal.NewFromInt(50000).Equal(got[0].Price.Decimal))
			require.NotNil(t, got[0].DueDate)
			assert.Equal(t, "2026-03-10", got[0].DueDate.Format("2006-01-02"))

			assert.Equal(t, noDetails, got[1].BorrowRequestID)
			assert.Nil(t, got[1].BookCopyID)
			assert.False(t, got[1].Price.Valid)

			assert.Equal(t, unpriced, got[2].BorrowRequestID)
			assert.NotNil(t, got[2].BookCopyID)
			assert.False(t, got[2].Price.Valid)
		})
	}
}

func TestRepository_CountActiveByCard(t *testing.T) {
	for _, driver := range dbtest.Drivers {
		t.Run(driver, func(t *testing.T) {
			db := dbtest.Open(t, driver)
			repo := NewRepository(db)
			ctx := context.Background()

			cardID := dbtest.Card(t, db, 20, "0")
			otherCard := dbtest.Card(t, db, 21, "0")
			due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

			for _, status := range []Status{StatusBorrowed, StatusOverdue, StatusReturned, StatusPending, StatusRejected} {
				dbtest.Borrow(t, db, cardID, string(status), due)
			}
			dbtest.Borrow(t, db, otherCard, string(StatusBorrowed), due)

			n, err := repo.CountActiveByCard(ctx, cardID)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = repo.CountActiveByCard(ctx, 999)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestRepository_GetByID(t *testing.T) {
	db := dbtest.Open(t, dbtest.Drivers[0])
	repo := NewRepository(db)

	cardID := dbtest.Card(t, db, 20, "0")
	id := dbtest.Borrow(t, db, cardID, string(StatusOverdue), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	req, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, StatusOverdue, req.Status)
	assert.Equal(t, cardID, req.LibraryCardID)

	missing, err := repo.GetByID(context.Background(), id+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
