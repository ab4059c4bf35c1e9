// Package memstore keeps the lending state in process memory.
// A single mutex serializes transactions, so every WithinTx call is isolated.
// It backs the test suites and STORE=memory development runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"
)

type Store struct {
	mu    sync.Mutex
	books map[uint]*models.Book
	loans map[uint]*models.Loan
	users map[string]*models.User

	nextBookID uint
	nextLoanID uint

	failNext int
	failErr  error
}

func New() *Store {
	return &Store{
		books: make(map[uint]*models.Book),
		loans: make(map[uint]*models.Loan),
		users: make(map[string]*models.User),
	}
}

// FailNextTx makes the next n transactions fail with err without running.
func (s *Store) FailNextTx(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
	s.failErr = err
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx lending.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		return s.failErr
	}

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Books

func (s *Store) FindBook(_ context.Context, id uint) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBooks(_ context.Context) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateBook(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBookID++
	now := time.Now().UTC()
	b.ID = s.nextBookID
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	s.books[b.ID] = &cp
	return nil
}

func (s *Store) UpdateBookDetails(_ context.Context, id uint, d lending.BookDetails) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	if d.Title != nil {
		b.Title = strings.TrimSpace(*d.Title)
	}
	if d.Author != nil {
		b.Author = strings.TrimSpace(*d.Author)
	}
	if d.Cover != nil {
		b.Cover = *d.Cover
	}
	if d.DailyFee != nil {
		b.DailyFee = *d.DailyFee
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

// Loans

func (s *Store) FindLoan(_ context.Context, id uint) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	out := s.withBook(l)
	return &out, nil
}

func (s *Store) ListLoans(_ context.Context, q lending.LoanQuery) ([]models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Loan, 0)
	for _, l := range s.loans {
		if q.Matches(*l) {
			out = append(out, s.withBook(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// withBook copies l and attaches a copy of its book. Caller holds mu.
func (s *Store) withBook(l *models.Loan) models.Loan {
	out := cloneLoan(l)
	if b, ok := s.books[l.BookID]; ok {
		cp := *b
		out.Book = &cp
	}
	return out
}

func cloneLoan(l *models.Loan) models.Loan {
	out := *l
	out.Book = nil
	if l.ActualReturnDate != nil {
		d := *l.ActualReturnDate
		out.ActualReturnDate = &d
	}
	return out
}

// memTx records an undo step for every write so a failed fn leaves no trace.
type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

func (t *memTx) LockBook(_ context.Context, id uint) (*models.Book, error) {
	b, ok := t.s.books[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) DecrementInventory(_ context.Context, bookID uint) error {
	b, ok := t.s.books[bookID]
	if !ok || b.Inventory == 0 {
		return lending.ErrConflict
	}
	b.Inventory--
	t.undo = append(t.undo, func() { b.Inventory++ })
	return nil
}

func (t *memTx) IncrementInventory(_ context.Context, bookID uint) error {
	b, ok := t.s.books[bookID]
	if !ok {
		return lending.ErrConflict
	}
	b.Inventory++
	t.undo = append(t.undo, func() { b.Inventory-- })
	return nil
}

func (t *memTx) CreateLoan(_ context.Context, l *models.Loan) error {
	if _, ok := t.s.books[l.BookID]; !ok {
		return lending.ErrNotFound
	}
	t.s.nextLoanID++
	now := time.Now().UTC()
	l.ID = t.s.nextLoanID
	l.CreatedAt, l.UpdatedAt = now, now
	stored := cloneLoan(l)
	t.s.loans[l.ID] = &stored
	id := l.ID
	t.undo = append(t.undo, func() { delete(t.s.loans, id) })
	return nil
}

func (t *memTx) LockLoan(_ context.Context, id uint) (*models.Loan, error) {
	l, ok := t.s.loans[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	out := cloneLoan(l)
	return &out, nil
}

func (t *memTx) CloseLoan(_ context.Context, loanID uint, returnedOn time.Time) error {
	l, ok := t.s.loans[loanID]
	if !ok || l.ActualReturnDate != nil {
		return lending.ErrConflict
	}
	d := returnedOn
	l.ActualReturnDate = &d
	t.undo = append(t.undo, func() { l.ActualReturnDate = nil })
	return nil
}
