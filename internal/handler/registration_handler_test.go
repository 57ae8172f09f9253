package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/registration/registrationtest"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
	"github.com/stemsi/unierp-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ model.EnrollmentEvent) error { return nil }

type userDirectory map[uuid.UUID]model.Role

func (d userDirectory) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	role, ok := d[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.User{ID: id, Role: role}, nil
}

type registrationFixture struct {
	router  *gin.Engine
	store   *registrationtest.MemoryStore
	auth    *service.AuthService
	cs201   uuid.UUID
	math101 uuid.UUID
	morning uuid.UUID
	student uuid.UUID
	users   userDirectory
	bearer  string
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	store := registrationtest.NewMemoryStore()
	cs101 := store.AddCourse("CS101", "Intro to Programming", 3)
	cs201 := store.AddCourse("CS201", "Data Structures", 4)
	math := store.AddCourse("MATH101", "Calculus I", 4)
	store.AddPrerequisite(cs201, cs101, nil)

	f := &registrationFixture{
		store:   store,
		auth:    service.NewAuthService(&config.Config{JWTSecret: "handler-secret", JWTExpiry: time.Hour}),
		student: uuid.New(),
	}
	f.users = userDirectory{f.student: model.RoleStudent}
	f.cs201 = store.AddOffering(cs201, 40, registrationtest.Slot(model.Monday, "10:00", "11:30"))
	f.math101 = store.AddOffering(math, 40, registrationtest.Slot(model.Monday, "10:30", "11:00"))
	f.morning = store.AddOffering(math, 40, registrationtest.Slot(model.Tuesday, "09:00", "10:00"))

	tok, err := f.auth.GenerateToken(f.student, "student@uni.test", model.RoleStudent, 0)
	require.NoError(t, err)
	f.bearer = "Bearer " + tok

	v := registration.NewValidator(store, registration.Options{})
	h := NewRegistrationHandler(service.NewRegistrationService(v, f.users, nopPublisher{}, zerolog.Nop()))

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	api := r.Group("/api/v1/student", middleware.RequireJWT(f.auth))
	api.POST("/registrations", h.Register)
	api.GET("/registrations/:offering_id/check", h.PreCheck)
	api.DELETE("/registrations/:offering_id", h.Drop)
	r.POST("/api/v1/admin/students/:id/registrations", h.RegisterStudent)
	f.router = r
	return f
}

type envelope[T any] struct {
	Data  T                   `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func (f *registrationFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRegisterEndpoint(t *testing.T) {
	f := newRegistrationFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{"offering_id": f.morning})
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode[registration.Outcome](t, w)
	assert.True(t, out.Data.Success)
	assert.Equal(t, "Successfully registered for MATH101 Calculus I.", out.Data.Message)
	require.NotNil(t, out.Data.Enrollment)
	assert.Equal(t, model.EnrollmentEnrolled, out.Data.Enrollment.Status)

	w = f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{"offering_id": f.cs201})
	require.Equal(t, http.StatusOK, w.Code, "a refusal is not an HTTP error")
	out = decode[registration.Outcome](t, w)
	assert.False(t, out.Data.Success)
	assert.Equal(t, registration.ReasonMissingPrerequisites, out.Data.Reason)
	assert.Contains(t, out.Data.Message, "CS101 Intro to Programming")
	require.Len(t, out.Data.Missing, 1)
}

func TestRegisterEndpointConflict(t *testing.T) {
	f := newRegistrationFixture(t)
	f.store.Enroll(f.student, f.math101, model.EnrollmentEnrolled, nil)
	cs102 := f.store.AddCourse("CS102", "Programming II", 3)
	clash := f.store.AddOffering(cs102, 30, registrationtest.Slot(model.Monday, "10:00", "11:30"))

	w := f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{"offering_id": clash})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[registration.Outcome](t, w)
	assert.Equal(t, registration.ReasonTimeConflict, out.Data.Reason)
	require.Len(t, out.Data.Conflicts, 1)
	assert.Equal(t, "MATH101", out.Data.Conflicts[0].Code)
	assert.Equal(t, "10:30-11:00", out.Data.Conflicts[0].Time)
}

func TestRegisterEndpointErrors(t *testing.T) {
	f := newRegistrationFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrValidation, decode[any](t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{"offering_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrOfferingNotFound, decode[any](t, w).Error.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/student/registrations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	bad := decode[any](t, w)
	assert.Equal(t, response.ErrInvalidID, bad.Error.Code)
	assert.Equal(t, "offering_id must be a UUID", bad.Error.Message)

	f.bearer = ""
	w = f.do(t, http.MethodPost, "/api/v1/student/registrations", gin.H{"offering_id": f.morning})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDropEndpoint(t *testing.T) {
	f := newRegistrationFixture(t)
	path := fmt.Sprintf("/api/v1/student/registrations/%s", f.morning)

	w := f.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[registration.Outcome](t, w)
	assert.False(t, out.Data.Success)
	assert.Equal(t, registration.ReasonNotEnrolled, out.Data.Reason)

	f.store.Enroll(f.student, f.morning, model.EnrollmentEnrolled, nil)
	w = f.do(t, http.MethodDelete, path, nil)
	out = decode[registration.Outcome](t, w)
	assert.True(t, out.Data.Success)
	assert.Empty(t, f.store.Enrollments(f.student))
}

func TestPreCheckEndpoint(t *testing.T) {
	f := newRegistrationFixture(t)
	f.store.Enroll(f.student, f.math101, model.EnrollmentEnrolled, nil)

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/registrations/%s/check", f.cs201), nil)
	require.Equal(t, http.StatusOK, w.Code)
	ev := decode[registration.Evaluation](t, w).Data
	assert.False(t, ev.Eligible)
	assert.False(t, ev.Prerequisites.Met)
	assert.True(t, ev.Conflicts.HasConflicts)
	assert.True(t, ev.Credits.Allowed)
	assert.Equal(t, 4, ev.Credits.Current)
	assert.Equal(t, 4, ev.Credits.Adding)
}

func TestRegisterStudentEndpoint(t *testing.T) {
	f := newRegistrationFixture(t)
	professor := uuid.New()
	f.users[professor] = model.RoleProfessor
	path := func(id uuid.UUID) string {
		return fmt.Sprintf("/api/v1/admin/students/%s/registrations", id)
	}

	w := f.do(t, http.MethodPost, path(professor), gin.H{"offering_id": f.morning})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrNotStudent, decode[any](t, w).Error.Code)
	assert.Empty(t, f.store.Enrollments(professor))

	w = f.do(t, http.MethodPost, path(uuid.New()), gin.H{"offering_id": f.morning})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrStudentNotFound, decode[any](t, w).Error.Code)

	w = f.do(t, http.MethodPost, path(f.student), gin.H{"offering_id": f.morning})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[registration.Outcome](t, w).Data.Success)
	assert.Len(t, f.store.Enrollments(f.student), 1)
}
