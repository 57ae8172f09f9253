package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/registration/registrationtest"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.EnrollmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.EnrollmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type userDirectory map[uuid.UUID]model.Role

func (d userDirectory) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	role, ok := d[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.User{ID: id, Role: role}, nil
}

func newRegistrationFixture(t *testing.T) (*RegistrationService, *registrationtest.MemoryStore, *recordingPublisher, uuid.UUID) {
	t.Helper()
	store := registrationtest.NewMemoryStore()
	course := store.AddCourse("CS101", "Intro to Programming", 3)
	offering := store.AddOffering(course, 30, registrationtest.Slot(model.Tuesday, "09:00", "10:00"))
	pub := &recordingPublisher{}
	v := registration.NewValidator(store, registration.Options{})
	return NewRegistrationService(v, userDirectory{}, pub, zerolog.Nop()), store, pub, offering
}

func TestRegistrationServicePublishesOnSuccess(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, offering := newRegistrationFixture(t)
	student := uuid.New()

	out, err := svc.Register(ctx, student, offering)
	require.NoError(t, err)
	require.True(t, out.Success)

	out, err = svc.Register(ctx, student, offering)
	require.NoError(t, err)
	assert.False(t, out.Success)

	out, err = svc.Drop(ctx, student, offering)
	require.NoError(t, err)
	assert.True(t, out.Success)

	out, err = svc.Drop(ctx, student, offering)
	require.NoError(t, err)
	assert.False(t, out.Success)

	require.Len(t, pub.events, 2, "refusals publish nothing")
	assert.Equal(t, model.ActionRegistered, pub.events[0].Action)
	assert.Equal(t, model.ActionDropped, pub.events[1].Action)
	assert.Equal(t, "CS101", pub.events[0].Detail)
	assert.Equal(t, student, pub.events[0].StudentID)
}

func TestRegistrationServiceIgnoresPublishFailure(t *testing.T) {
	svc, store, pub, offering := newRegistrationFixture(t)
	pub.err = errors.New("redis down")
	student := uuid.New()

	out, err := svc.Register(context.Background(), student, offering)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Len(t, store.Enrollments(student), 1)
}

func TestRegistrationServicePreCheck(t *testing.T) {
	svc, _, _, offering := newRegistrationFixture(t)

	ev, err := svc.PreCheck(context.Background(), uuid.New(), offering)
	require.NoError(t, err)
	assert.True(t, ev.Eligible)
	assert.Equal(t, 25, svc.CreditCeiling())

	_, err = svc.PreCheck(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, registration.ErrOfferingNotFound)
}

func TestRegisterOnBehalfRequiresStudent(t *testing.T) {
	ctx := context.Background()
	store := registrationtest.NewMemoryStore()
	course := store.AddCourse("CS101", "Intro to Programming", 3)
	offering := store.AddOffering(course, 30, registrationtest.Slot(model.Tuesday, "09:00", "10:00"))
	student, professor := uuid.New(), uuid.New()
	users := userDirectory{student: model.RoleStudent, professor: model.RoleProfessor}
	pub := &recordingPublisher{}
	svc := NewRegistrationService(registration.NewValidator(store, registration.Options{}), users, pub, zerolog.Nop())

	_, err := svc.RegisterOnBehalf(ctx, professor, offering)
	assert.ErrorIs(t, err, ErrNotStudent)

	_, err = svc.RegisterOnBehalf(ctx, uuid.New(), offering)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	assert.Empty(t, store.Enrollments(professor))
	assert.Empty(t, pub.events)

	out, err := svc.RegisterOnBehalf(ctx, student, offering)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Len(t, store.Enrollments(student), 1)
}
