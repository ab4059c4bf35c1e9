package db

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithinTx runs fn inside one Postgres transaction with a bounded lock wait.
func (r *Repo) WithinTx(ctx context.Context, fn func(tx lending.Tx) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.LockTimeout > 0 {
			// SET cannot take bind parameters
			if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.LockTimeout.Milliseconds())).Error; err != nil {
				return err
			}
		}
		return fn(&gormTx{tx: tx})
	})
	return translateError(err)
}

func (r *Repo) FindLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).Preload("Book").First(&l, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, q lending.LoanQuery) ([]models.Loan, error) {
	qry := r.DB.WithContext(ctx).Model(&models.Loan{}).Preload("Book").Order("id ASC")
	if q.BorrowerID != "" {
		// user_id is a uuid column; a malformed id matches nobody
		if _, err := uuid.Parse(q.BorrowerID); err != nil {
			return []models.Loan{}, nil
		}
		qry = qry.Where("user_id = ?", q.BorrowerID)
	}
	if q.Active != nil {
		if *q.Active {
			qry = qry.Where("actual_return_date IS NULL")
		} else {
			qry = qry.Where("actual_return_date IS NOT NULL")
		}
	}
	var ls []models.Loan
	if err := qry.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

// gormTx implements lending.Tx on top of an open gorm transaction.
type gormTx struct{ tx *gorm.DB }

func (t *gormTx) LockBook(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

func (t *gormTx) DecrementInventory(ctx context.Context, bookID uint) error {
	res := t.tx.WithContext(ctx).Model(&models.Book{}).
		Where("id = ? AND inventory > 0", bookID).
		Update("inventory", gorm.Expr("inventory - 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: book %d has no inventory left", lending.ErrConflict, bookID)
	}
	return nil
}

func (t *gormTx) IncrementInventory(ctx context.Context, bookID uint) error {
	res := t.tx.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", bookID).
		Update("inventory", gorm.Expr("inventory + 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: book %d vanished", lending.ErrConflict, bookID)
	}
	return nil
}

func (t *gormTx) CreateLoan(ctx context.Context, l *models.Loan) error {
	if err := t.tx.WithContext(ctx).Omit(clause.Associations).Create(l).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (t *gormTx) LockLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var l models.Loan
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &l, nil
}

func (t *gormTx) CloseLoan(ctx context.Context, loanID uint, returnedOn time.Time) error {
	res := t.tx.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND actual_return_date IS NULL", loanID).
		Update("actual_return_date", returnedOn)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: loan %d already closed", lending.ErrConflict, loanID)
	}
	return nil
}
