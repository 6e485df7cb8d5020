package repository

import (
	"errors"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// isUniqueViolation распознает нарушение уникального индекса как после
// трансляции GORM, так и в сыром виде от pgx.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func storageError(message string, err error) error {
	return apperrors.NewStorageError("DATABASE_ERROR", message, err)
}
