package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"
)

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBook(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

func (r *Repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// UpdateBookDetails never touches inventory; that column belongs to the loan transactions.
func (r *Repo) UpdateBookDetails(ctx context.Context, id uint, d lending.BookDetails) (*models.Book, error) {
	updates := map[string]any{}
	if d.Title != nil {
		updates["title"] = strings.TrimSpace(*d.Title)
	}
	if d.Author != nil {
		updates["author"] = strings.TrimSpace(*d.Author)
	}
	if d.Cover != nil {
		updates["cover"] = string(*d.Cover)
	}
	if d.DailyFee != nil {
		updates["daily_fee"] = *d.DailyFee
	}
	if len(updates) == 0 {
		return r.FindBook(ctx, id)
	}

	res := r.DB.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, lending.ErrNotFound
	}
	return r.FindBook(ctx, id)
}
