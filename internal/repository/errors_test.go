package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/matchup-stats-service/internal/repository"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, repository.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, repository.ErrConflict},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, repository.ErrConflict},
		{"canceled statement", &pgconn.PgError{Code: pgerrcode.QueryCanceled}, repository.ErrUnavailable},
		{"too many connections", &pgconn.PgError{Code: pgerrcode.TooManyConnections}, repository.ErrUnavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), repository.ErrUnavailable},
		{"passthrough", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := repository.MapPgError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapPgError_SyntaxErrorPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SyntaxError}
	got := repository.MapPgError(pgErr)
	assert.Same(t, pgErr, got)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, repository.Page{Limit: repository.DefaultPageLimit}, repository.Page{Offset: -3}.Normalize())
	assert.Equal(t, repository.Page{Limit: repository.MaxPageLimit, Offset: 10}, repository.Page{Limit: 10_000, Offset: 10}.Normalize())
}
