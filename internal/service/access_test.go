package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stretchr/testify/assert"
)

type fakeProfessors map[uuid.UUID]*uuid.UUID

func (f fakeProfessors) ProfessorOf(_ context.Context, offeringID uuid.UUID) (*uuid.UUID, error) {
	prof, ok := f[offeringID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return prof, nil
}

func TestAuthorizeTeaching(t *testing.T) {
	ctx := context.Background()
	prof := uuid.New()
	taught, unassigned := uuid.New(), uuid.New()
	lookup := fakeProfessors{taught: &prof, unassigned: nil}

	assert.NoError(t, authorizeTeaching(ctx, lookup, Actor{ID: prof, Role: model.RoleProfessor}, taught))
	assert.NoError(t, authorizeTeaching(ctx, lookup, Actor{ID: uuid.New(), Role: model.RoleAdmin}, unassigned))

	assert.ErrorIs(t, authorizeTeaching(ctx, lookup, Actor{ID: uuid.New(), Role: model.RoleProfessor}, taught), ErrNotOfferingProfessor)
	assert.ErrorIs(t, authorizeTeaching(ctx, lookup, Actor{ID: prof, Role: model.RoleProfessor}, unassigned), ErrNotOfferingProfessor)
	assert.ErrorIs(t, authorizeTeaching(ctx, lookup, Actor{ID: prof, Role: model.RoleStudent}, taught), ErrNotOfferingProfessor)
	assert.ErrorIs(t, authorizeTeaching(ctx, lookup, Actor{ID: prof, Role: model.RoleAdmin}, uuid.New()), repository.ErrNotFound)
}
