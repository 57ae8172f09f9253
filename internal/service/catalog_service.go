package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/response"
)

// CatalogService manages courses, prerequisites and offerings, caching term
// listings in Redis. Every write bumps the catalog version so stale pages
// are never served.
type CatalogService struct {
	courseRepo   *repository.CourseRepository
	offeringRepo *repository.OfferingRepository
	userRepo     *repository.UserRepository
	rdb          *redis.Client
	ttl          time.Duration
	log          zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	courseRepo *repository.CourseRepository,
	offeringRepo *repository.OfferingRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	ttl time.Duration,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		courseRepo:   courseRepo,
		offeringRepo: offeringRepo,
		userRepo:     userRepo,
		rdb:          rdb,
		ttl:          ttl,
		log:          log.With().Str("component", "catalog_service").Logger(),
	}
}

// ─── Cache helpers ─────────────────────────────────────────────────────

func (s *CatalogService) version(ctx context.Context) (int64, bool) {
	v, err := s.rdb.Get(ctx, config.CacheKey.CatalogVersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Catalog version unavailable, bypassing cache")
		return 0, false
	}
	return v, true
}

func (s *CatalogService) bumpVersion(ctx context.Context) {
	if err := s.rdb.Incr(ctx, config.CacheKey.CatalogVersionKey()).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to bump catalog version")
	}
}

// InvalidateCache retires every cached catalog page. Writers outside this
// service, such as the seed loader, call it after changing the catalog.
func (s *CatalogService) InvalidateCache(ctx context.Context) {
	s.bumpVersion(ctx)
}

func (s *CatalogService) readCache(ctx context.Context, key string, dst any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// ─── Courses ───────────────────────────────────────────────────────────

// ListCourses returns a page of courses.
func (s *CatalogService) ListCourses(ctx context.Context, department, search string, page, perPage int) ([]model.Course, *response.Pagination, error) {
	page, perPage, offset := normalizePage(page, perPage)
	courses, total, err := s.courseRepo.ListPaginated(ctx, department, search, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	return courses, response.NewPagination(page, perPage, total), nil
}

// ListAllCourses returns every course, served from cache when possible.
func (s *CatalogService) ListAllCourses(ctx context.Context) ([]model.Course, error) {
	v, cacheable := s.version(ctx)
	key := config.CacheKey.CatalogCoursesKey(v)
	var courses []model.Course
	if cacheable && s.readCache(ctx, key, &courses) {
		return courses, nil
	}
	courses, err := s.courseRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.writeCache(ctx, key, courses)
	}
	return courses, nil
}

// GetCourse retrieves a course with its prerequisites.
func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// CreateCourse adds a course to the catalog.
func (s *CatalogService) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		Department:  req.Department,
	}
	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Prerequisites = []model.Prerequisite{}
	s.bumpVersion(ctx)
	s.log.Info().Str("course_id", c.ID.String()).Str("code", c.Code).Msg("Course created")
	return c, nil
}

// UpdateCourse applies a partial update.
func (s *CatalogService) UpdateCourse(ctx context.Context, id uuid.UUID, upd model.CourseUpdate) (*model.Course, error) {
	c, err := s.courseRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if !upd.Empty() {
		s.bumpVersion(ctx)
	}
	return c, nil
}

// DeleteCourse removes a course without offerings.
func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

// AddPrerequisite links prereqID as required by courseID. Self-edges and
// edges that would close a cycle are rejected.
func (s *CatalogService) AddPrerequisite(ctx context.Context, courseID uuid.UUID, req model.AddPrerequisiteRequest) (*model.Course, error) {
	if courseID == req.PrerequisiteID {
		return nil, ErrSelfPrerequisite
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetByID(ctx, req.PrerequisiteID); err != nil {
		return nil, err
	}
	cycle, err := s.courseRepo.Requires(ctx, req.PrerequisiteID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check prerequisite cycle: %w", err)
	}
	if cycle {
		return nil, ErrPrerequisiteCycle
	}
	if err := s.courseRepo.AddPrerequisite(ctx, courseID, req.PrerequisiteID, req.MinGrade); err != nil {
		return nil, err
	}
	s.bumpVersion(ctx)
	return s.courseRepo.GetByID(ctx, courseID)
}

// RemovePrerequisite deletes an edge.
func (s *CatalogService) RemovePrerequisite(ctx context.Context, courseID, prereqID uuid.UUID) error {
	if err := s.courseRepo.RemovePrerequisite(ctx, courseID, prereqID); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

// ─── Offerings ─────────────────────────────────────────────────────────

// ListOfferings returns the offerings of a term, served from cache when possible.
func (s *CatalogService) ListOfferings(ctx context.Context, semester model.Semester, year int) ([]model.CourseOffering, error) {
	v, cacheable := s.version(ctx)
	key := config.CacheKey.CatalogOfferingsKey(v, string(semester), year)
	var offerings []model.CourseOffering
	if cacheable && s.readCache(ctx, key, &offerings) {
		return offerings, nil
	}
	offerings, err := s.offeringRepo.ListByTerm(ctx, semester, year)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.writeCache(ctx, key, offerings)
	}
	return offerings, nil
}

// ListCourseOfferings lists every offering of a course.
func (s *CatalogService) ListCourseOfferings(ctx context.Context, courseID uuid.UUID) ([]model.CourseOffering, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.offeringRepo.ListByCourse(ctx, courseID)
}

// GetOffering retrieves an offering with its schedule.
func (s *CatalogService) GetOffering(ctx context.Context, id uuid.UUID) (*model.CourseOffering, error) {
	return s.offeringRepo.GetByID(ctx, id)
}

func (s *CatalogService) checkProfessor(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	u, err := s.userRepo.GetByID(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidProfessor
	}
	if err != nil {
		return err
	}
	if u.Role != model.RoleProfessor {
		return ErrInvalidProfessor
	}
	return nil
}

func slotsFromInput(in []model.ScheduleSlotInput) ([]model.ScheduleSlot, error) {
	slots := make([]model.ScheduleSlot, len(in))
	for i, si := range in {
		slots[i] = si.Slot()
		if err := slots[i].Validate(); err != nil {
			return nil, err
		}
	}
	return slots, nil
}

// CreateOffering schedules a course for a term.
func (s *CatalogService) CreateOffering(ctx context.Context, req model.CreateOfferingRequest) (*model.CourseOffering, error) {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, err
	}
	if err := s.checkProfessor(ctx, req.ProfessorID); err != nil {
		return nil, err
	}
	slots, err := slotsFromInput(req.Schedule)
	if err != nil {
		return nil, err
	}

	o := &model.CourseOffering{
		CourseID:    req.CourseID,
		Semester:    req.Semester,
		Year:        req.Year,
		ProfessorID: req.ProfessorID,
		MaxStudents: req.MaxStudents,
		Location:    req.Location,
		Schedule:    slots,
	}
	if err := s.offeringRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.bumpVersion(ctx)
	s.log.Info().
		Str("offering_id", o.ID.String()).
		Str("semester", string(o.Semester)).
		Int("year", o.Year).
		Msg("Offering created")
	return s.offeringRepo.GetByID(ctx, o.ID)
}

// UpdateOffering applies a partial update.
func (s *CatalogService) UpdateOffering(ctx context.Context, id uuid.UUID, upd model.OfferingUpdate) (*model.CourseOffering, error) {
	if err := s.checkProfessor(ctx, upd.ProfessorID); err != nil {
		return nil, err
	}
	o, err := s.offeringRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if !upd.Empty() {
		s.bumpVersion(ctx)
	}
	return o, nil
}

// ReplaceSchedule swaps an offering's weekly slots.
func (s *CatalogService) ReplaceSchedule(ctx context.Context, id uuid.UUID, in []model.ScheduleSlotInput) (*model.CourseOffering, error) {
	slots, err := slotsFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.offeringRepo.ReplaceSchedule(ctx, id, slots); err != nil {
		return nil, err
	}
	s.bumpVersion(ctx)
	return s.offeringRepo.GetByID(ctx, id)
}

// DeleteOffering removes an offering.
func (s *CatalogService) DeleteOffering(ctx context.Context, id uuid.UUID) error {
	if err := s.offeringRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

// PrewarmOfferings caches the listing of the given term on startup.
func (s *CatalogService) PrewarmOfferings(ctx context.Context, semester model.Semester, year int) {
	offerings, err := s.ListOfferings(ctx, semester, year)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to prewarm offerings")
		return
	}
	s.log.Info().
		Int("count", len(offerings)).
		Str("semester", string(semester)).
		Int("year", year).
		Msg("Offerings cache prewarmed")
}
