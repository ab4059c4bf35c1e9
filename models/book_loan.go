// models/book_loan.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const BookTable = "library_books"
const LoanTable = "library_loans"

type Cover string

const (
	CoverHard Cover = "HARD"
	CoverSoft Cover = "SOFT"
)

func (c Cover) Valid() bool { return c == CoverHard || c == CoverSoft }

// Book is a catalog entry. Inventory moves only through loan create/return, ±1 each.
type Book struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Author    string          `gorm:"size:255;not null" json:"author"`
	Cover     Cover           `gorm:"size:10;not null" json:"cover"`
	Inventory uint            `gorm:"not null;check:chk_books_inventory,inventory >= 0" json:"inventory"`
	DailyFee  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"dailyFee"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Loan is one borrowing of one book by one user.
// BorrowDate is immutable; ActualReturnDate goes from nil to a date exactly once.
type Loan struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	BookID             uint       `gorm:"index;not null" json:"bookId"`
	UserID             string     `gorm:"type:uuid;index;not null" json:"userId"`
	BorrowDate         time.Time  `gorm:"type:date;not null" json:"borrowDate"`
	ExpectedReturnDate time.Time  `gorm:"type:date;not null;check:chk_loans_expected_after_borrow,expected_return_date > borrow_date" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time `gorm:"type:date;index;check:chk_loans_actual_after_borrow,actual_return_date >= borrow_date" json:"actualReturnDate,omitempty"`

	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the loan has not been returned yet.
func (l Loan) Active() bool { return l.ActualReturnDate == nil }

func (Book) TableName() string { return BookTable }
func (Loan) TableName() string { return LoanTable }
