package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// Domain Errors
var (
	ErrForbidden            = errors.New("action not permitted for this user")
	ErrNotOfferingProfessor = errors.New("not the professor of this offering")
	ErrNotEnrolled          = errors.New("student is not enrolled in this offering")
	ErrSelfPrerequisite     = errors.New("a course cannot require itself")
	ErrPrerequisiteCycle    = errors.New("prerequisite would create a cycle")
	ErrInvalidProfessor     = errors.New("assigned user is not a professor")
	ErrStudentNumberRole    = errors.New("only students carry a student number")
	ErrStudentNotFound      = errors.New("student not found")
	ErrNotStudent           = errors.New("user is not a student")
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

type professorLookup interface {
	ProfessorOf(ctx context.Context, offeringID uuid.UUID) (*uuid.UUID, error)
}

// authorizeTeaching lets admins through and requires professors to be assigned to the offering.
func authorizeTeaching(ctx context.Context, offerings professorLookup, actor Actor, offeringID uuid.UUID) error {
	prof, err := offerings.ProfessorOf(ctx, offeringID)
	if err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != model.RoleProfessor || prof == nil || *prof != actor.ID {
		return ErrNotOfferingProfessor
	}
	return nil
}

// normalizePage clamps paging parameters and returns them with the row offset.
func normalizePage(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage, (page - 1) * perPage
}

var _ professorLookup = (*repository.OfferingRepository)(nil)
