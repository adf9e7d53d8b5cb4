// Package databasetest поднимает мигрированную SQLite в памяти для тестов
package databasetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site-payroll-api/internal/database"
	"github.com/site-payroll-api/internal/migrations"
)

// New возвращает пустую БД со схемой; закрывается по завершении теста
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrations.Up(sqlDB, database.Dialect(database.DriverSQLite)); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
