package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// DashboardService assembles the role-scoped dashboards.
type DashboardService struct {
	repo             *repository.DashboardRepository
	enrollmentRepo   *repository.EnrollmentRepository
	assignmentRepo   *repository.AssignmentRepository
	announcementRepo *repository.AnnouncementRepository
	store            registration.Store
	creditCeiling    int
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	repo *repository.DashboardRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	assignmentRepo *repository.AssignmentRepository,
	announcementRepo *repository.AnnouncementRepository,
	store registration.Store,
	creditCeiling int,
) *DashboardService {
	return &DashboardService{
		repo:             repo,
		enrollmentRepo:   enrollmentRepo,
		assignmentRepo:   assignmentRepo,
		announcementRepo: announcementRepo,
		store:            store,
		creditCeiling:    creditCeiling,
	}
}

// Student returns the dashboard of one student.
func (s *DashboardService) Student(ctx context.Context, studentID uuid.UUID) (*model.StudentDashboard, error) {
	current, err := s.store.SumEnrolledCredits(ctx, studentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.CountEnrolledCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}

	completed, err := s.enrollmentRepo.CompletedCredits(ctx, studentID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.assignmentRepo.UpcomingForStudent(ctx, studentID, time.Now(), 5)
	if err != nil {
		return nil, err
	}

	announcements, err := s.announcementRepo.ListForStudent(ctx, studentID, 5)
	if err != nil {
		return nil, err
	}

	return &model.StudentDashboard{
		CurrentCredits:      current,
		CreditCeiling:       s.creditCeiling,
		EnrolledCourses:     enrolled,
		CompletedCredits:    completed,
		UpcomingAssignments: upcoming,
		RecentAnnouncements: announcements,
	}, nil
}

// Professor returns the dashboard of one professor.
func (s *DashboardService) Professor(ctx context.Context, professorID uuid.UUID) (*model.ProfessorDashboard, error) {
	offerings, err := s.repo.GetTaughtOfferings(ctx, professorID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.assignmentRepo.UpcomingForProfessor(ctx, professorID, time.Now(), 10)
	if err != nil {
		return nil, err
	}

	return &model.ProfessorDashboard{
		Offerings:           offerings,
		UpcomingAssignments: upcoming,
	}, nil
}

// Admin returns the campus-wide dashboard.
func (s *DashboardService) Admin(ctx context.Context) (*model.AdminDashboard, error) {
	data, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	data.StatusCounts, err = s.repo.GetEnrollmentStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	data.FullestOfferings, err = s.repo.GetFullestOfferings(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &data, nil
}
