package db_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_library/db"
	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestRepo connects to TEST_DATABASE_URL and resets the library tables.
func openTestRepo(t *testing.T) *db.Repo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	conn, err := db.ConnectDB(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	require.NoError(t, conn.Exec("TRUNCATE "+models.LoanTable+", "+models.BookTable+", library_users RESTART IDENTITY CASCADE").Error)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db.NewRepo(conn)
}

func seedBook(t *testing.T, r *db.Repo, inventory uint) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:     "The Go Programming Language",
		Author:    "Donovan & Kernighan",
		Cover:     models.CoverSoft,
		Inventory: inventory,
		DailyFee:  decimal.RequireFromString("0.50"),
	}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}

func seedUser(t *testing.T, r *db.Repo, name string) lending.Requester {
	t.Helper()
	u, err := r.FindOrCreateUser(context.Background(), name, uuid.NewString())
	require.NoError(t, err)
	return lending.Requester{ID: u.ID, Name: u.Username, Role: lending.RoleRegular}
}

func TestRepo_LoanRoundTrip(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 2)
	alice := seedUser(t, r, "alice")

	m, err := lending.NewManager(r)
	require.NoError(t, err)

	loan, err := m.CreateLoan(ctx, alice, lending.CreateLoanInput{
		BookID:             book.ID,
		ExpectedReturnDate: time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.NotZero(t, loan.ID)

	got, err := r.FindBook(ctx, book.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Inventory)

	_, err = m.ReturnLoan(ctx, alice, loan.ID, lending.ReturnLoanInput{})
	require.NoError(t, err)

	got, err = r.FindBook(ctx, book.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Inventory)

	_, err = m.ReturnLoan(ctx, alice, loan.ID, lending.ReturnLoanInput{})
	assert.ErrorIs(t, err, lending.ErrAlreadyReturned)

	stored, err := r.FindLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Book)
	assert.Equal(t, book.Title, stored.Book.Title)
	assert.False(t, stored.Active())
}

func TestRepo_ConcurrentCreatesOnLastUnit(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 1)

	m, err := lending.NewManager(r, lending.WithRetryOptions(lending.WithMaxAttempts(8)))
	require.NoError(t, err)

	const workers = 10
	requesters := make([]lending.Requester, workers)
	for i := range requesters {
		requesters[i] = seedUser(t, r, uuid.NewString())
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		outOfStock int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(req lending.Requester) {
			defer wg.Done()
			_, err := m.CreateLoan(ctx, req, lending.CreateLoanInput{
				BookID:             book.ID,
				ExpectedReturnDate: time.Now().AddDate(0, 0, 3),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, lending.ErrOutOfStock):
				outOfStock++
			}
		}(requesters[i])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, outOfStock)

	got, err := r.FindBook(ctx, book.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Inventory)
}

func TestRepo_ListLoansFilters(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 5)
	alice := seedUser(t, r, "alice")
	bob := seedUser(t, r, "bob")

	m, err := lending.NewManager(r)
	require.NoError(t, err)

	due := time.Now().AddDate(0, 0, 5)
	a1, err := m.CreateLoan(ctx, alice, lending.CreateLoanInput{BookID: book.ID, ExpectedReturnDate: due})
	require.NoError(t, err)
	_, err = m.CreateLoan(ctx, alice, lending.CreateLoanInput{BookID: book.ID, ExpectedReturnDate: due})
	require.NoError(t, err)
	_, err = m.CreateLoan(ctx, bob, lending.CreateLoanInput{BookID: book.ID, ExpectedReturnDate: due})
	require.NoError(t, err)
	_, err = m.ReturnLoan(ctx, alice, a1.ID, lending.ReturnLoanInput{})
	require.NoError(t, err)

	active := true
	ls, err := r.ListLoans(ctx, lending.LoanQuery{BorrowerID: alice.ID, Active: &active})
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, alice.ID, ls[0].UserID)
	assert.NotNil(t, ls[0].Book)

	all, err := r.ListLoans(ctx, lending.LoanQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRepo_UpdateBookDetailsLeavesInventory(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 3)

	title := "Concurrency in Go"
	fee := decimal.RequireFromString("1.25")
	got, err := r.UpdateBookDetails(ctx, book.ID, lending.BookDetails{Title: &title, DailyFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.True(t, fee.Equal(got.DailyFee))
	assert.EqualValues(t, 3, got.Inventory)

	_, err = r.UpdateBookDetails(ctx, 9999, lending.BookDetails{Title: &title})
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func TestRepo_InventoryCheckConstraint(t *testing.T) {
	r := openTestRepo(t)
	book := seedBook(t, r, 0)

	err := r.DB.Exec("UPDATE "+models.BookTable+" SET inventory = inventory - 1 WHERE id = ?", book.ID).Error
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23514", pgErr.Code) // check_violation
}

func TestRepo_FindMissingRows(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	_, err := r.FindBook(ctx, 424242)
	assert.ErrorIs(t, err, lending.ErrNotFound)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = r.FindLoan(ctx, 424242)
	assert.ErrorIs(t, err, lending.ErrNotFound)

	_, err = r.FindUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, lending.ErrNotFound)
}

func TestRepo_ListLoansMalformedBorrower(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 1)
	alice := seedUser(t, r, "alice")

	m, err := lending.NewManager(r)
	require.NoError(t, err)
	_, err = m.CreateLoan(ctx, alice, lending.CreateLoanInput{BookID: book.ID, ExpectedReturnDate: time.Now().AddDate(0, 0, 3)})
	require.NoError(t, err)

	ls, err := r.ListLoans(ctx, lending.LoanQuery{BorrowerID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, ls)
}

func TestRepo_LoanRequiresExistingBorrower(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	book := seedBook(t, r, 1)

	err := r.WithinTx(ctx, func(tx lending.Tx) error {
		return tx.CreateLoan(ctx, &models.Loan{
			BookID:             book.ID,
			UserID:             uuid.NewString(),
			BorrowDate:         lending.DateOf(time.Now()),
			ExpectedReturnDate: lending.DateOf(time.Now().AddDate(0, 0, 1)),
		})
	})
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23503", pgErr.Code) // foreign_key_violation
}
