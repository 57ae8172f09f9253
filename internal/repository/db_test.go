package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSetClauseUpdate(t *testing.T) {
	name := "Data Structures"
	credits := 4
	u := model.CourseUpdate{Name: &name, Credits: &credits}

	var s setClause
	setIf(&s, "code", u.Code)
	setIf(&s, "name", u.Name)
	setIf(&s, "credits", u.Credits)
	id := uuid.New()

	sql, args := s.update("courses", id, true)
	assert.Equal(t, "UPDATE courses SET name = $1, credits = $2, updated_at = NOW() WHERE id = $3", sql)
	assert.Equal(t, []any{"Data Structures", 4, id}, args)

	sql, args = s.update("courses", id, false)
	assert.Equal(t, "UPDATE courses SET name = $1, credits = $2 WHERE id = $3", sql)
	assert.Len(t, args, 3)
}

func TestSetClauseEmpty(t *testing.T) {
	var s setClause
	setIf[string](&s, "name", nil)
	assert.True(t, s.empty())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505", ConstraintName: "courses_code_key"}), ErrDuplicate)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}), ErrReferenced)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23514"}), ErrCheck)

	other := errors.New("conn closed")
	assert.Equal(t, other, mapError(other))
}
