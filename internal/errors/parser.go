package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MySQL and PostgreSQL duplicate-entry error codes.
const (
	mysqlDupEntry      = 1062
	pgUniqueViolation  = "23505"
	pgForeignKeyErr    = "23503"
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"
)

// ParseDBError translates a database error into an APIError.
// gorm.ErrRecordNotFound maps to NOT_FOUND, driver-level unique constraint
// violations map to DUPLICATE_RESOURCE, and everything else is reported as
// a generic DATABASE_ERROR so driver internals never leak to callers.
func ParseDBError(err error) *APIError {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResourceNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewAPIError(ErrDatabase, "database operation timed out")
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if mysqlErr.Number == mysqlDupEntry {
			return ErrDuplicateResource
		}
		return ErrDatabase
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateResource
		case pgForeignKeyErr, pgCheckViolation, pgNotNullViolation:
			return NewAPIError(ErrValidation, "database constraint violated")
		}
		return ErrDatabase
	}

	// SQLite reports constraint violations as plain strings.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed") {
		return ErrDuplicateResource
	}

	return ErrDatabase
}
