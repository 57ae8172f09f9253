package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// UserLookup resolves a user by id.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// RegistrationService runs student registration and drop through the
// validator and publishes an event for every change.
type RegistrationService struct {
	validator *registration.Validator
	users     UserLookup
	events    EventPublisher
	log       zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(validator *registration.Validator, users UserLookup, events EventPublisher, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		validator: validator,
		users:     users,
		events:    events,
		log:       log.With().Str("component", "registration_service").Logger(),
	}
}

// Register enrolls the student when every check passes.
func (s *RegistrationService) Register(ctx context.Context, studentID, offeringID uuid.UUID) (*registration.Outcome, error) {
	out, err := s.validator.RegisterForCourse(ctx, studentID, offeringID)
	if err != nil {
		return nil, err
	}

	evt := s.log.Info()
	if !out.Success {
		evt = s.log.Debug().Str("reason", string(out.Reason))
	}
	evt.Str("student_id", studentID.String()).
		Str("offering_id", offeringID.String()).
		Bool("success", out.Success).
		Msg("Registration attempt")

	if out.Success {
		s.publish(ctx, studentID, offeringID, model.ActionRegistered, out)
	}
	return out, nil
}

// RegisterOnBehalf registers a student chosen by an administrator. The id
// must name an existing user with the student role.
func (s *RegistrationService) RegisterOnBehalf(ctx context.Context, studentID, offeringID uuid.UUID) (*registration.Outcome, error) {
	u, err := s.users.GetByID(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	return s.Register(ctx, studentID, offeringID)
}

// Drop removes the student's active enrollment.
func (s *RegistrationService) Drop(ctx context.Context, studentID, offeringID uuid.UUID) (*registration.Outcome, error) {
	out, err := s.validator.DropCourse(ctx, studentID, offeringID)
	if err != nil {
		return nil, err
	}
	if out.Success {
		s.log.Info().
			Str("student_id", studentID.String()).
			Str("offering_id", offeringID.String()).
			Msg("Course dropped")
		s.publish(ctx, studentID, offeringID, model.ActionDropped, out)
	}
	return out, nil
}

// PreCheck runs every registration check without enrolling.
func (s *RegistrationService) PreCheck(ctx context.Context, studentID, offeringID uuid.UUID) (*registration.Evaluation, error) {
	return s.validator.Evaluate(ctx, studentID, offeringID)
}

// CreditCeiling returns the configured per-student ceiling.
func (s *RegistrationService) CreditCeiling() int {
	return s.validator.CreditCeiling()
}

// publish is best effort: the enrollment is already committed.
func (s *RegistrationService) publish(ctx context.Context, studentID, offeringID uuid.UUID, action model.EnrollmentAction, out *registration.Outcome) {
	ev := model.EnrollmentEvent{
		StudentID:  studentID,
		OfferingID: offeringID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if out.Offering != nil {
		ev.Detail = out.Offering.Code
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("student_id", studentID.String()).
			Str("action", string(action)).
			Msg("Failed to publish enrollment event")
	}
}
