// Package registrationtest provides an in-memory registration.Store for tests.
package registrationtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
)

type course struct {
	id      uuid.UUID
	code    string
	name    string
	credits int
}

type offering struct {
	id          uuid.UUID
	courseID    uuid.UUID
	maxStudents int
	slots       []model.ScheduleSlot
}

type edge struct {
	prereqID uuid.UUID
	minGrade *model.Grade
}

// MemoryStore is a registration.Store backed by maps. Atomically serializes
// callers and restores the enrollment table when fn fails.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	courses     map[uuid.UUID]course
	offerings   map[uuid.UUID]offering
	prereqs     map[uuid.UUID][]edge
	enrollments []model.Enrollment

	// Err, when set, is returned by every read.
	Err error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:   make(map[uuid.UUID]course),
		offerings: make(map[uuid.UUID]offering),
		prereqs:   make(map[uuid.UUID][]edge),
	}
}

// Slot builds a schedule slot from "HH:MM" strings.
func Slot(day model.Weekday, start, end string) model.ScheduleSlot {
	return model.ScheduleSlot{Day: day, Start: model.MustClockTime(start), End: model.MustClockTime(end)}
}

// AddCourse adds a catalog course and returns its id.
func (m *MemoryStore) AddCourse(code, name string, credits int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.courses[id] = course{id: id, code: code, name: name, credits: credits}
	return id
}

// AddPrerequisite records that courseID requires prereqID.
func (m *MemoryStore) AddPrerequisite(courseID, prereqID uuid.UUID, minGrade *model.Grade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prereqs[courseID] = append(m.prereqs[courseID], edge{prereqID: prereqID, minGrade: minGrade})
}

// AddOffering schedules courseID and returns the offering id.
func (m *MemoryStore) AddOffering(courseID uuid.UUID, maxStudents int, slots ...model.ScheduleSlot) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	for i := range slots {
		slots[i].ID = uuid.New()
		slots[i].OfferingID = id
	}
	m.offerings[id] = offering{id: id, courseID: courseID, maxStudents: maxStudents, slots: slots}
	return id
}

// Enroll inserts an enrollment row directly, bypassing every check.
func (m *MemoryStore) Enroll(studentID, offeringID uuid.UUID, status model.EnrollmentStatus, grade *model.Grade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments = append(m.enrollments, model.Enrollment{
		ID:         uuid.New(),
		StudentID:  studentID,
		OfferingID: offeringID,
		Status:     status,
		Grade:      grade,
		EnrolledAt: time.Now().UTC(),
	})
}

// Complete is Enroll with status completed and the given grade.
func (m *MemoryStore) Complete(studentID, offeringID uuid.UUID, grade model.Grade) {
	m.Enroll(studentID, offeringID, model.EnrollmentCompleted, &grade)
}

// Enrollments returns a copy of the student's rows.
func (m *MemoryStore) Enrollments(studentID uuid.UUID) []model.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemoryStore) GetOffering(_ context.Context, offeringID uuid.UUID) (*registration.OfferingInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	off, ok := m.offerings[offeringID]
	if !ok {
		return nil, registration.ErrOfferingNotFound
	}
	c, ok := m.courses[off.courseID]
	if !ok {
		return nil, registration.ErrOfferingNotFound
	}
	return &registration.OfferingInfo{
		OfferingID:  off.id,
		CourseID:    c.id,
		Code:        c.code,
		Name:        c.name,
		Credits:     c.credits,
		MaxStudents: off.maxStudents,
		Slots:       append([]model.ScheduleSlot(nil), off.slots...),
	}, nil
}

func (m *MemoryStore) ListPrerequisites(_ context.Context, courseID uuid.UUID) ([]registration.PrerequisiteEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []registration.PrerequisiteEdge
	for _, e := range m.prereqs[courseID] {
		c := m.courses[e.prereqID]
		out = append(out, registration.PrerequisiteEdge{CourseID: c.id, Code: c.code, Name: c.name, MinGrade: e.minGrade})
	}
	return out, nil
}

func (m *MemoryStore) ListPassedCourses(_ context.Context, studentID uuid.UUID) ([]registration.PassedCourse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []registration.PassedCourse
	for _, e := range m.enrollments {
		if e.StudentID != studentID || e.Status != model.EnrollmentCompleted || e.Grade == nil {
			continue
		}
		out = append(out, registration.PassedCourse{CourseID: m.offerings[e.OfferingID].courseID, Grade: *e.Grade})
	}
	return out, nil
}

func (m *MemoryStore) ListEnrolledSlots(_ context.Context, studentID uuid.UUID) ([]registration.EnrolledSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []registration.EnrolledSlot
	for _, e := range m.enrollments {
		if e.StudentID != studentID || e.Status != model.EnrollmentEnrolled {
			continue
		}
		off := m.offerings[e.OfferingID]
		c := m.courses[off.courseID]
		for _, s := range off.slots {
			out = append(out, registration.EnrolledSlot{OfferingID: off.id, CourseID: c.id, Code: c.code, Name: c.name, Slot: s})
		}
	}
	return out, nil
}

func (m *MemoryStore) SumEnrolledCredits(_ context.Context, studentID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	total := 0
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.Status == model.EnrollmentEnrolled {
			total += m.courses[m.offerings[e.OfferingID].courseID].credits
		}
	}
	return total, nil
}

func (m *MemoryStore) FindEnrollment(_ context.Context, studentID, offeringID uuid.UUID) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.OfferingID == offeringID {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CountEnrolled(_ context.Context, offeringID uuid.UUID, _ bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for _, e := range m.enrollments {
		if e.OfferingID == offeringID && e.Status == model.EnrollmentEnrolled {
			n++
		}
	}
	return n, nil
}

// InsertEnrollment enforces the (student, offering) uniqueness the database constraint provides.
func (m *MemoryStore) InsertEnrollment(_ context.Context, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.enrollments {
		if cur.StudentID == e.StudentID && cur.OfferingID == e.OfferingID {
			return registration.ErrAlreadyEnrolled
		}
	}
	m.enrollments = append(m.enrollments, *e)
	return nil
}

func (m *MemoryStore) DeleteEnrollment(_ context.Context, studentID, offeringID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.enrollments {
		if e.StudentID == studentID && e.OfferingID == offeringID && e.Status == model.EnrollmentEnrolled {
			m.enrollments = append(m.enrollments[:i], m.enrollments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Atomically(ctx context.Context, fn func(ctx context.Context, tx registration.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := append([]model.Enrollment(nil), m.enrollments...)
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.enrollments = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// LockStudent is a no-op: Atomically already serializes every transaction.
func (m *MemoryStore) LockStudent(context.Context, uuid.UUID) error {
	return nil
}

var _ registration.Store = (*MemoryStore)(nil)
