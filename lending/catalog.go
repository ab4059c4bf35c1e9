package lending

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_library/models"

	"github.com/shopspring/decimal"
)

const maxTextLen = 255

// numeric(6,2)
var maxDailyFee = decimal.New(10000, 0)

// Catalog is the read side of the book collection plus admin edits of non-inventory fields.
type Catalog struct{ store Store }

func NewCatalog(store Store) *Catalog { return &Catalog{store: store} }

// ValidateBook checks a new book's fields.
func ValidateBook(b *models.Book) error {
	if err := validateText("title", b.Title); err != nil {
		return err
	}
	if err := validateText("author", b.Author); err != nil {
		return err
	}
	if !b.Cover.Valid() {
		return fieldError(ErrInvalidInput, "cover", "%q is not a valid choice.", b.Cover)
	}
	return validateFee(b.DailyFee)
}

func validateText(field, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fieldError(ErrInvalidInput, field, "This field may not be blank.")
	}
	if len(v) > maxTextLen {
		return fieldError(ErrInvalidInput, field, "Ensure this field has no more than %d characters.", maxTextLen)
	}
	return nil
}

func validateFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return fieldError(ErrInvalidInput, "daily_fee", "Ensure this value is greater than or equal to 0.")
	}
	if !fee.Equal(fee.Round(2)) {
		return fieldError(ErrInvalidInput, "daily_fee", "Ensure that there are no more than 2 decimal places.")
	}
	if fee.GreaterThanOrEqual(maxDailyFee) {
		return fieldError(ErrInvalidInput, "daily_fee", "Ensure that there are no more than 6 digits in total.")
	}
	return nil
}

// AddBook registers a new book with its initial inventory.
func (c *Catalog) AddBook(ctx context.Context, b *models.Book) error {
	if err := ValidateBook(b); err != nil {
		return err
	}
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	return c.store.CreateBook(ctx, b)
}

// UpdateBook edits descriptive fields. Inventory is not editable here.
func (c *Catalog) UpdateBook(ctx context.Context, id uint, d BookDetails) (*models.Book, error) {
	if d.Title != nil {
		if err := validateText("title", *d.Title); err != nil {
			return nil, err
		}
	}
	if d.Author != nil {
		if err := validateText("author", *d.Author); err != nil {
			return nil, err
		}
	}
	if d.Cover != nil && !d.Cover.Valid() {
		return nil, fieldError(ErrInvalidInput, "cover", "%q is not a valid choice.", *d.Cover)
	}
	if d.DailyFee != nil {
		if err := validateFee(*d.DailyFee); err != nil {
			return nil, err
		}
	}
	b, err := c.store.UpdateBookDetails(ctx, id, d)
	if errors.Is(err, ErrNotFound) {
		return nil, fieldError(ErrNotFound, "book", "Book %d does not exist.", id)
	}
	return b, err
}

func (c *Catalog) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	b, err := c.store.FindBook(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fieldError(ErrNotFound, "book", "Book %d does not exist.", id)
	}
	return b, err
}

func (c *Catalog) ListBooks(ctx context.Context) ([]models.Book, error) {
	return c.store.ListBooks(ctx)
}

// EstimateFee charges dailyFee per day borrowed: up to the actual return date for
// closed loans, up to the expected date for active ones. At least one day is charged.
func EstimateFee(l models.Loan, dailyFee decimal.Decimal) decimal.Decimal {
	end := l.ExpectedReturnDate
	if l.ActualReturnDate != nil {
		end = *l.ActualReturnDate
	}
	days := DaysBetween(l.BorrowDate, end)
	if days < 1 {
		days = 1
	}
	return dailyFee.Mul(decimal.NewFromInt(int64(days))).Round(2)
}
