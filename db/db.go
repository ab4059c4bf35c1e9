package db

import (
	"Gin_postgres_redis_library/models"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("Database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.Loan{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// active loans of one borrower, the default regular-user listing
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_by_user
	  ON %s (user_id, id)
	  WHERE actual_return_date IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return fmt.Errorf("create active loan index: %w", err)
	}

	return nil
}
