package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "courses_category_id_fkey"}
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "courses_slug_key"}
	other := errors.New("connection reset")

	tests := []struct {
		name  string
		err   error
		read  error
		write error
	}{
		{"nil", nil, nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound, ErrNotFound},
		{"unique violation", unique, ErrDuplicate, ErrDuplicate},
		{"foreign key violation", fk, ErrInUse, ErrInvalidReference},
		{"wrapped foreign key violation", fmt.Errorf("insert: %w", fk), ErrInUse, ErrInvalidReference},
		{"other", other, other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.read, mapError(tt.err))
			assert.Equal(t, tt.write, mapWriteError(tt.err))
		})
	}
}
