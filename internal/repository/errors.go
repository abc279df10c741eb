package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository errors. Callers match them with errors.Is.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrInUse     = errors.New("record is referenced by other records")
	// ErrInvalidReference is returned when a write points at a parent
	// record that does not exist.
	ErrInvalidReference = errors.New("referenced record not found")
)

const foreignKeyViolation = "23503"

// mapError converts driver errors into repository errors. A foreign key
// violation here comes from a delete, so it means the row is still in use.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case foreignKeyViolation:
			return ErrInUse
		}
	}
	return err
}

// mapWriteError is mapError for inserts and updates, where a foreign key
// violation means the referenced parent is missing.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrInvalidReference
	}
	return mapError(err)
}
