package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := &models.Book{Title: "Dune", Author: "Herbert", Cover: models.CoverSoft, Inventory: 1}
	require.NoError(t, s.CreateBook(ctx, b))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx lending.Tx) error {
		require.NoError(t, tx.DecrementInventory(ctx, b.ID))
		l := &models.Loan{BookID: b.ID, UserID: "u1", BorrowDate: time.Now(), ExpectedReturnDate: time.Now().AddDate(0, 0, 1)}
		require.NoError(t, tx.CreateLoan(ctx, l))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.FindBook(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Inventory)

	loans, err := s.ListLoans(ctx, lending.LoanQuery{})
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestTx_ConditionalGuards(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := &models.Book{Title: "Dune", Author: "Herbert", Cover: models.CoverSoft, Inventory: 0}
	require.NoError(t, s.CreateBook(ctx, b))

	err := s.WithinTx(ctx, func(tx lending.Tx) error { return tx.DecrementInventory(ctx, b.ID) })
	assert.ErrorIs(t, err, lending.ErrConflict)

	require.NoError(t, s.WithinTx(ctx, func(tx lending.Tx) error { return tx.IncrementInventory(ctx, b.ID) }))

	var loanID uint
	require.NoError(t, s.WithinTx(ctx, func(tx lending.Tx) error {
		l := &models.Loan{BookID: b.ID, UserID: "u1", BorrowDate: time.Now(), ExpectedReturnDate: time.Now().AddDate(0, 0, 1)}
		if err := tx.CreateLoan(ctx, l); err != nil {
			return err
		}
		loanID = l.ID
		return tx.CloseLoan(ctx, l.ID, time.Now())
	}))

	err = s.WithinTx(ctx, func(tx lending.Tx) error { return tx.CloseLoan(ctx, loanID, time.Now()) })
	assert.ErrorIs(t, err, lending.ErrConflict)
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := &models.Book{Title: "Dune", Author: "Herbert", Cover: models.CoverSoft, Inventory: 2}
	require.NoError(t, s.CreateBook(ctx, b))

	got, err := s.FindBook(ctx, b.ID)
	require.NoError(t, err)
	got.Inventory = 99

	again, err := s.FindBook(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, again.Inventory)
}

func TestFailNextTx(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailNextTx(2, lending.ErrConflict)

	ran := 0
	fn := func(lending.Tx) error { ran++; return nil }
	assert.ErrorIs(t, s.WithinTx(ctx, fn), lending.ErrConflict)
	assert.ErrorIs(t, s.WithinTx(ctx, fn), lending.ErrConflict)
	assert.NoError(t, s.WithinTx(ctx, fn))
	assert.Equal(t, 1, ran)
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.FindOrCreateUser(ctx, "alice", "id-1")
	require.NoError(t, err)
	again, err := s.FindOrCreateUser(ctx, "alice", "id-2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	require.NoError(t, s.SetUserAdmin(ctx, u.ID, true))
	got, err := s.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	assert.ErrorIs(t, s.SetUserAdmin(ctx, "missing", true), lending.ErrNotFound)
	_, err = s.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, lending.ErrNotFound)
}
