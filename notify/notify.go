// Package notify delivers best-effort messages about new loans.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Gin_postgres_redis_library/lending"
)

const dateLayout = "2006-01-02"

// FormatLoanCreated renders the plain-text message shared by every channel.
func FormatLoanCreated(ev lending.LoanCreated) string {
	who := ev.BorrowerName
	if who == "" {
		who = ev.BorrowerID
	}
	return fmt.Sprintf("New Borrowing Created:\nUser: %s\nBook: %s\nExpected Return Date: %s",
		who, ev.BookTitle, ev.ExpectedReturnDate.Format(dateLayout))
}

// Log writes the message to the logger. It is the fallback channel in development.
type Log struct {
	log *slog.Logger
}

func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{log: l}
}

func (n *Log) LoanCreated(ctx context.Context, ev lending.LoanCreated) error {
	n.log.InfoContext(ctx, "[notify] loan created",
		"loan_id", ev.LoanID,
		"borrower", ev.BorrowerName,
		"book", ev.BookTitle,
		"expected_return_date", ev.ExpectedReturnDate.Format(dateLayout))
	return nil
}

// Multi fans one event out to several channels and joins their errors.
type Multi []lending.Notifier

func (m Multi) LoanCreated(ctx context.Context, ev lending.LoanCreated) error {
	var errs []error
	for _, n := range m {
		if err := n.LoanCreated(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
