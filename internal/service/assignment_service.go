package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// AssignmentService manages coursework for offerings.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	offeringRepo   *repository.OfferingRepository
	enrollmentRepo *repository.EnrollmentRepository
	log            zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	offeringRepo *repository.OfferingRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		offeringRepo:   offeringRepo,
		enrollmentRepo: enrollmentRepo,
		log:            log.With().Str("component", "assignment_service").Logger(),
	}
}

// ListForOffering lists an offering's assignments for its professor, an
// administrator or an enrolled student.
func (s *AssignmentService) ListForOffering(ctx context.Context, actor Actor, offeringID uuid.UUID) ([]model.Assignment, error) {
	if actor.Role == model.RoleStudent {
		if _, err := s.offeringRepo.ProfessorOf(ctx, offeringID); err != nil {
			return nil, err
		}
		ok, err := s.enrollmentRepo.IsEnrolled(ctx, actor.ID, offeringID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotEnrolled
		}
	} else if err := authorizeTeaching(ctx, s.offeringRepo, actor, offeringID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListByOffering(ctx, offeringID)
}

// Create adds an assignment to an offering the actor teaches.
func (s *AssignmentService) Create(ctx context.Context, actor Actor, offeringID uuid.UUID, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if err := authorizeTeaching(ctx, s.offeringRepo, actor, offeringID); err != nil {
		return nil, err
	}
	a := &model.Assignment{
		OfferingID:  offeringID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		MaxPoints:   req.MaxPoints,
		CreatedBy:   actor.ID,
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("assignment_id", a.ID.String()).Str("offering_id", offeringID.String()).Msg("Assignment created")
	return s.assignmentRepo.GetByID(ctx, a.ID)
}

// Update applies a partial update to an assignment the actor owns through its offering.
func (s *AssignmentService) Update(ctx context.Context, actor Actor, id uuid.UUID, upd model.AssignmentUpdate) (*model.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeTeaching(ctx, s.offeringRepo, actor, a.OfferingID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.Update(ctx, id, upd)
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeTeaching(ctx, s.offeringRepo, actor, a.OfferingID); err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, id)
}
