package lending

import (
	"context"
	"time"

	"Gin_postgres_redis_library/models"

	"github.com/shopspring/decimal"
)

// Store is the durable state shared by every request worker.
type Store interface {
	// WithinTx runs fn in one isolated transaction; it commits only if fn returns nil.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	FindBook(ctx context.Context, id uint) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	CreateBook(ctx context.Context, b *models.Book) error
	UpdateBookDetails(ctx context.Context, id uint, d BookDetails) (*models.Book, error)

	// FindLoan returns the loan with its Book loaded.
	FindLoan(ctx context.Context, id uint) (*models.Loan, error)
	// ListLoans returns matching loans with Book loaded, ordered by ID ascending.
	ListLoans(ctx context.Context, q LoanQuery) ([]models.Loan, error)
}

// Tx is the transaction-scoped view of a Store.
// Lock* calls hold the row until the transaction ends.
type Tx interface {
	LockBook(ctx context.Context, id uint) (*models.Book, error)
	// DecrementInventory must only succeed while inventory > 0, else ErrConflict.
	DecrementInventory(ctx context.Context, bookID uint) error
	IncrementInventory(ctx context.Context, bookID uint) error

	CreateLoan(ctx context.Context, l *models.Loan) error
	LockLoan(ctx context.Context, id uint) (*models.Loan, error)
	// CloseLoan must only succeed while actual_return_date is null, else ErrConflict.
	CloseLoan(ctx context.Context, loanID uint, returnedOn time.Time) error
}

// BookDetails lists the catalog fields editable after creation. Nil fields are left alone.
type BookDetails struct {
	Title    *string
	Author   *string
	Cover    *models.Cover
	DailyFee *decimal.Decimal
}
