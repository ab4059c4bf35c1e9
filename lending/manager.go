package lending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"Gin_postgres_redis_library/models"
)

// Notifier receives a best-effort message after a loan is created.
type Notifier interface {
	LoanCreated(ctx context.Context, ev LoanCreated) error
}

// LoanCreated is the payload handed to a Notifier.
type LoanCreated struct {
	LoanID             uint      `json:"loanId"`
	BorrowerID         string    `json:"borrowerId"`
	BorrowerName       string    `json:"borrowerName,omitempty"`
	BookTitle          string    `json:"bookTitle"`
	ExpectedReturnDate time.Time `json:"expectedReturnDate"`
}

// Manager owns the loan lifecycle. It is the only code path that changes a book's inventory.
type Manager struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
	retry    retryConfig
}

// Option configures a Manager.
type Option func(*Manager) error

func WithNotifier(n Notifier) Option {
	return func(m *Manager) error { m.notifier = n; return nil }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) error {
		if l != nil {
			m.log = l
		}
		return nil
	}
}

// WithClock replaces time.Now; "today" is the calendar date of the returned time.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error { m.now = now; return nil }
}

// WithRetryOptions tunes how store conflicts are retried.
func WithRetryOptions(opts ...RetryOption) Option {
	return func(m *Manager) error {
		for _, opt := range opts {
			if err := opt(&m.retry); err != nil {
				return err
			}
		}
		return nil
	}
}

func NewManager(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store: store,
		log:   slog.Default(),
		now:   time.Now,
		retry: defaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) today() time.Time { return DateOf(m.now()) }

type CreateLoanInput struct {
	BookID             uint
	ExpectedReturnDate time.Time
	// BorrowDate defaults to today.
	BorrowDate *time.Time
}

// CreateLoan lends one unit of a book to requester.
// Checks run in order: book exists, inventory > 0, expected return date after borrow date.
func (m *Manager) CreateLoan(ctx context.Context, requester Requester, in CreateLoanInput) (*models.Loan, error) {
	if requester.ID == "" {
		return nil, ErrUnauthorized
	}
	borrowDate := m.today()
	if in.BorrowDate != nil {
		borrowDate = DateOf(*in.BorrowDate)
	}
	expected := DateOf(in.ExpectedReturnDate)

	var loan *models.Loan
	attempts, err := retryOnConflict(ctx, m.retry, func(ctx context.Context) error {
		return m.store.WithinTx(ctx, func(tx Tx) error {
			// 1) lock the book row, read current inventory
			book, err := tx.LockBook(ctx, in.BookID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return fieldError(ErrNotFound, "book", "Book %d does not exist.", in.BookID)
				}
				return err
			}
			// 2) validate
			if book.Inventory == 0 {
				return fieldError(ErrOutOfStock, "book", "Book '%s' is out of stock and cannot be borrowed.", book.Title)
			}
			if !expected.After(borrowDate) {
				return fieldError(ErrInvalidDateRange, "expected_return_date", "Expected return date must be after the borrow date.")
			}
			// 3) take one unit; conditional on inventory > 0
			if err := tx.DecrementInventory(ctx, book.ID); err != nil {
				return err
			}
			// 4) persist the loan
			l := &models.Loan{
				BookID:             book.ID,
				UserID:             requester.ID,
				BorrowDate:         borrowDate,
				ExpectedReturnDate: expected,
			}
			if err := tx.CreateLoan(ctx, l); err != nil {
				return err
			}
			book.Inventory--
			l.Book = book
			loan = l
			return nil
		})
	})
	if err != nil {
		if !IsValidation(err) && !errors.Is(err, ErrNotFound) {
			m.log.Error("create loan failed", "book_id", in.BookID, "user_id", requester.ID, "attempts", attempts, "error", err)
		}
		return nil, err
	}

	m.log.Info("loan created",
		"loan_id", loan.ID, "book_id", loan.BookID, "user_id", loan.UserID,
		"inventory_left", loan.Book.Inventory, "attempts", attempts)
	m.notifyCreated(ctx, requester, loan)
	return loan, nil
}

type ReturnLoanInput struct {
	// ReturnDate defaults to today; it may not precede the borrow date.
	ReturnDate *time.Time
}

// ReturnLoan closes an active loan and puts its unit back into inventory.
// Returning a closed loan fails with ErrAlreadyReturned; it is not idempotent.
func (m *Manager) ReturnLoan(ctx context.Context, requester Requester, loanID uint, in ReturnLoanInput) (*models.Loan, error) {
	returnedOn := m.today()
	if in.ReturnDate != nil {
		returnedOn = DateOf(*in.ReturnDate)
	}

	var loan *models.Loan
	attempts, err := retryOnConflict(ctx, m.retry, func(ctx context.Context) error {
		return m.store.WithinTx(ctx, func(tx Tx) error {
			l, err := tx.LockLoan(ctx, loanID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return fieldError(ErrNotFound, "loan", "Loan %d does not exist.", loanID)
				}
				return err
			}
			if !requester.CanActOn(l.UserID) {
				return fieldError(ErrUnauthorized, "loan", "You do not have permission to return this book.")
			}
			if !l.Active() {
				return fieldError(ErrAlreadyReturned, "actual_return_date", "This borrowing has already been returned.")
			}
			if returnedOn.Before(DateOf(l.BorrowDate)) {
				return fieldError(ErrInvalidDateRange, "actual_return_date", "Actual return date cannot be before the borrow date.")
			}
			if err := tx.CloseLoan(ctx, l.ID, returnedOn); err != nil {
				return err
			}
			if err := tx.IncrementInventory(ctx, l.BookID); err != nil {
				return err
			}
			l.ActualReturnDate = &returnedOn
			loan = l
			return nil
		})
	})
	if err != nil {
		if !IsValidation(err) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnauthorized) {
			m.log.Error("return loan failed", "loan_id", loanID, "user_id", requester.ID, "attempts", attempts, "error", err)
		}
		return nil, err
	}

	m.log.Info("loan returned", "loan_id", loan.ID, "book_id", loan.BookID, "returned_by", requester.ID, "attempts", attempts)
	return loan, nil
}

// GetLoan returns one loan. Loans outside the requester's scope read as not found.
func (m *Manager) GetLoan(ctx context.Context, requester Requester, loanID uint) (*models.Loan, error) {
	l, err := m.store.FindLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fieldError(ErrNotFound, "loan", "Loan %d does not exist.", loanID)
		}
		return nil, err
	}
	if !requester.CanActOn(l.UserID) {
		return nil, fieldError(ErrNotFound, "loan", "Loan %d does not exist.", loanID)
	}
	return l, nil
}

// ListLoans returns the loans visible to requester under filter, by ID ascending.
func (m *Manager) ListLoans(ctx context.Context, requester Requester, filter LoanFilter) ([]models.Loan, error) {
	return m.store.ListLoans(ctx, filter.Resolve(requester))
}

func (m *Manager) notifyCreated(ctx context.Context, requester Requester, loan *models.Loan) {
	if m.notifier == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			m.log.Error("loan notification panicked", "loan_id", loan.ID, "panic", p)
		}
	}()

	ev := LoanCreated{
		LoanID:             loan.ID,
		BorrowerID:         requester.ID,
		BorrowerName:       requester.Name,
		ExpectedReturnDate: loan.ExpectedReturnDate,
	}
	if loan.Book != nil {
		ev.BookTitle = loan.Book.Title
	}
	if err := m.notifier.LoanCreated(ctx, ev); err != nil {
		m.log.Warn("loan notification failed", "loan_id", loan.ID, "error", err)
	}
}
