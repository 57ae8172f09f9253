package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrReferenced = errors.New("record is referenced by other data or references a missing record")
	ErrCheck      = errors.New("record violates a table constraint")
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapError translates pgx errors into the package's sentinel errors.
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
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		case "23514":
			return fmt.Errorf("%w: %s", ErrCheck, pgErr.ConstraintName)
		}
	}
	return err
}

// setClause collects "col = $n" assignments for a partial UPDATE. Column
// names come from the calling repository, never from request input.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// setIf adds col only when v is non-nil.
func setIf[T any](s *setClause, col string, v *T) {
	if v != nil {
		s.add(col, *v)
	}
}

func (s *setClause) empty() bool {
	return len(s.cols) == 0
}

// update renders UPDATE table SET ... WHERE id = $n, touching updated_at when asked.
func (s *setClause) update(table string, id any, touch bool) (string, []any) {
	cols := s.cols
	if touch {
		cols = append(cols[:len(cols):len(cols)], "updated_at = NOW()")
	}
	args := append(s.args[:len(s.args):len(s.args)], id)
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(cols, ", "), len(args)), args
}
