// Package testutil содержит общие помощники для тестов пакетов с хранилищем.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Kosench/shortlink/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB создает SQLite базу во временном каталоге теста с той же схемой,
// что и миграции PostgreSQL. Пул ограничен одним соединением, чтобы
// фоновая запись кликов не упиралась в блокировки SQLite.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.ShortLink{}, &model.ClickEvent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}
