package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/Kosench/shortlink/internal/config"
	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет встроенные SQL миграции. Для мигратора открывается
// отдельное соединение: его закрытие не затрагивает рабочий пул.
func Migrate(cfg config.DatabaseConfig) (err error) {
	migrationDB, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open migration db: %w", err)
	}
	defer func() {
		if closeErr := migrationDB.Close(); err == nil {
			err = closeErr
		}
	}()

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := pgxv5.WithInstance(migrationDB, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if runErr := m.Up(); runErr != nil && !errors.Is(runErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", runErr)
	}
	return nil
}

// migrationNames возвращает имена встроенных файлов миграций
func migrationNames() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
