package controllers

import (
	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"
)

const dateLayout = "2006-01-02"

type BookView struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Cover     string `json:"cover"`
	Inventory uint   `json:"inventory"`
	DailyFee  string `json:"daily_fee"`
}

func NewBookView(b *models.Book) BookView {
	return BookView{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Cover:     string(b.Cover),
		Inventory: b.Inventory,
		DailyFee:  b.DailyFee.StringFixed(2),
	}
}

// LoanCreateView is the response to a successful borrow.
type LoanCreateView struct {
	ID                 uint   `json:"id"`
	Book               uint   `json:"book"`
	BorrowDate         string `json:"borrow_date"`
	ExpectedReturnDate string `json:"expected_return_date"`
}

func NewLoanCreateView(l *models.Loan) LoanCreateView {
	return LoanCreateView{
		ID:                 l.ID,
		Book:               l.BookID,
		BorrowDate:         l.BorrowDate.Format(dateLayout),
		ExpectedReturnDate: l.ExpectedReturnDate.Format(dateLayout),
	}
}

// LoanReadView is used by list and retrieve; the book is nested.
type LoanReadView struct {
	ID                 uint      `json:"id"`
	BorrowDate         string    `json:"borrow_date"`
	ExpectedReturnDate string    `json:"expected_return_date"`
	ActualReturnDate   *string   `json:"actual_return_date"`
	Book               *BookView `json:"book"`
	User               string    `json:"user"`
	IsActive           bool      `json:"is_active"`
	EstimatedFee       string    `json:"estimated_fee,omitempty"`
}

func NewLoanReadView(l *models.Loan) LoanReadView {
	v := LoanReadView{
		ID:                 l.ID,
		BorrowDate:         l.BorrowDate.Format(dateLayout),
		ExpectedReturnDate: l.ExpectedReturnDate.Format(dateLayout),
		User:               l.UserID,
		IsActive:           l.Active(),
	}
	if l.ActualReturnDate != nil {
		s := l.ActualReturnDate.Format(dateLayout)
		v.ActualReturnDate = &s
	}
	if l.Book != nil {
		bv := NewBookView(l.Book)
		v.Book = &bv
		v.EstimatedFee = lending.EstimateFee(*l, l.Book.DailyFee).StringFixed(2)
	}
	return v
}

type LoanReturnView struct {
	ID               uint   `json:"id"`
	ActualReturnDate string `json:"actual_return_date"`
	Message          string `json:"message"`
}

func NewLoanReturnView(l *models.Loan) LoanReturnView {
	v := LoanReturnView{ID: l.ID, Message: "Book returned successfully!"}
	if l.ActualReturnDate != nil {
		v.ActualReturnDate = l.ActualReturnDate.Format(dateLayout)
	}
	return v
}
