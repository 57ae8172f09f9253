// Package registration decides whether a student may enroll in a course
// offering and performs the enrollment under a per-student lock.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
)

// DefaultCreditCeiling is the most credits a student may hold in enrolled offerings.
const DefaultCreditCeiling = 25

// Mode selects how prerequisite edges with a minimum grade are judged.
type Mode string

const (
	// ModePass accepts any non-failing grade and ignores an edge's minimum grade.
	ModePass Mode = "pass"
	// ModeMinimum additionally requires the grade to meet the edge's minimum grade.
	ModeMinimum Mode = "minimum"
)

// ParseMode maps a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePass:
		return ModePass, nil
	case ModeMinimum:
		return ModeMinimum, nil
	}
	return "", fmt.Errorf("unknown prerequisite mode %q", s)
}

// Options tune the validator. Zero values select the defaults.
type Options struct {
	CreditCeiling    int
	PrerequisiteMode Mode
	EnforceCapacity  bool
	Now              func() time.Time
}

// Reason classifies a refused registration or drop.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonAlreadyEnrolled      Reason = "already_enrolled"
	ReasonMissingPrerequisites Reason = "missing_prerequisites"
	ReasonCreditLimit          Reason = "credit_limit_exceeded"
	ReasonTimeConflict         Reason = "time_conflict"
	ReasonOfferingFull         Reason = "offering_full"
	ReasonNotEnrolled          Reason = "not_enrolled"
)

type MissingPrerequisite struct {
	CourseID uuid.UUID    `json:"id"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	MinGrade *model.Grade `json:"min_grade,omitempty"`
}

type PrerequisiteResult struct {
	Met     bool                  `json:"met"`
	Missing []MissingPrerequisite `json:"missing"`
}

type ConflictingCourse struct {
	CourseID   uuid.UUID     `json:"id"`
	OfferingID uuid.UUID     `json:"offering_id"`
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	Day        model.Weekday `json:"day"`
	Time       string        `json:"time"`
}

type ConflictResult struct {
	HasConflicts       bool                `json:"has_conflicts"`
	ConflictingCourses []ConflictingCourse `json:"conflicting_courses"`
}

type CreditResult struct {
	Allowed bool `json:"allowed"`
	Current int  `json:"current"`
	Adding  int  `json:"adding"`
	Max     int  `json:"max"`
}

// Evaluation is the result of running every check without stopping at the first failure.
type Evaluation struct {
	Eligible      bool               `json:"eligible"`
	Prerequisites PrerequisiteResult `json:"prerequisites"`
	Conflicts     ConflictResult     `json:"time_conflicts"`
	Credits       CreditResult       `json:"credits"`
}

// Outcome is the result of a registration or drop. A refusal is an Outcome
// with Success false, never an error.
type Outcome struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Reason     Reason            `json:"reason,omitempty"`
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`

	Missing   []MissingPrerequisite `json:"missing_prerequisites,omitempty"`
	Conflicts []ConflictingCourse   `json:"conflicting_courses,omitempty"`
	Credits   *CreditResult         `json:"credits,omitempty"`

	Offering *OfferingInfo `json:"-"`
}

// Validator runs the registration checks against a Store.
type Validator struct {
	store Store
	opts  Options
}

// NewValidator creates a Validator.
func NewValidator(store Store, opts Options) *Validator {
	if opts.CreditCeiling <= 0 {
		opts.CreditCeiling = DefaultCreditCeiling
	}
	if opts.PrerequisiteMode == "" {
		opts.PrerequisiteMode = ModePass
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Validator{store: store, opts: opts}
}

// CreditCeiling returns the configured credit ceiling.
func (v *Validator) CreditCeiling() int {
	return v.opts.CreditCeiling
}

// CheckPrerequisites lists the prerequisites of the offering's course the student has not passed.
func (v *Validator) CheckPrerequisites(ctx context.Context, studentID, offeringID uuid.UUID) (*PrerequisiteResult, error) {
	off, err := v.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	return v.checkPrerequisites(ctx, v.store, studentID, off)
}

// CheckTimeConflicts lists the enrolled courses whose meetings clash with the offering's.
func (v *Validator) CheckTimeConflicts(ctx context.Context, studentID, offeringID uuid.UUID) (*ConflictResult, error) {
	off, err := v.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	return checkTimeConflicts(ctx, v.store, studentID, off)
}

// CheckCreditLimit reports whether the offering's credits fit under the ceiling.
func (v *Validator) CheckCreditLimit(ctx context.Context, studentID, offeringID uuid.UUID) (*CreditResult, error) {
	off, err := v.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	return v.checkCreditLimit(ctx, v.store, studentID, off)
}

// Evaluate runs all three checks and reports every failure at once.
func (v *Validator) Evaluate(ctx context.Context, studentID, offeringID uuid.UUID) (*Evaluation, error) {
	off, err := v.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	prereq, err := v.checkPrerequisites(ctx, v.store, studentID, off)
	if err != nil {
		return nil, err
	}
	credits, err := v.checkCreditLimit(ctx, v.store, studentID, off)
	if err != nil {
		return nil, err
	}
	conflicts, err := checkTimeConflicts(ctx, v.store, studentID, off)
	if err != nil {
		return nil, err
	}
	return &Evaluation{
		Eligible:      prereq.Met && credits.Allowed && !conflicts.HasConflicts,
		Prerequisites: *prereq,
		Conflicts:     *conflicts,
		Credits:       *credits,
	}, nil
}

// RegisterForCourse enrolls the student if every check passes. The checks and
// the insert run in one transaction holding the student's lock, so concurrent
// registrations by the same student see each other's results.
func (v *Validator) RegisterForCourse(ctx context.Context, studentID, offeringID uuid.UUID) (*Outcome, error) {
	var out *Outcome
	err := v.store.Atomically(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.LockStudent(ctx, studentID); err != nil {
			return err
		}
		var err error
		out, err = v.register(ctx, tx, studentID, offeringID)
		return err
	})
	if errors.Is(err, ErrAlreadyEnrolled) {
		return &Outcome{
			Message: "You are already enrolled in this course offering.",
			Reason:  ReasonAlreadyEnrolled,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Validator) register(ctx context.Context, tx Store, studentID, offeringID uuid.UUID) (*Outcome, error) {
	off, err := tx.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	existing, err := tx.FindEnrollment(ctx, studentID, offeringID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return alreadyEnrolled(off, existing.Status), nil
	}

	prereq, err := v.checkPrerequisites(ctx, tx, studentID, off)
	if err != nil {
		return nil, err
	}
	if !prereq.Met {
		return &Outcome{
			Message:  "Missing prerequisites: " + joinMissing(prereq.Missing),
			Reason:   ReasonMissingPrerequisites,
			Missing:  prereq.Missing,
			Offering: off,
		}, nil
	}

	credits, err := v.checkCreditLimit(ctx, tx, studentID, off)
	if err != nil {
		return nil, err
	}
	if !credits.Allowed {
		return &Outcome{
			Message: fmt.Sprintf("Credit limit exceeded: you have %d credits enrolled and %s adds %d, over the maximum of %d.",
				credits.Current, off.Code, credits.Adding, credits.Max),
			Reason:   ReasonCreditLimit,
			Credits:  credits,
			Offering: off,
		}, nil
	}

	conflicts, err := checkTimeConflicts(ctx, tx, studentID, off)
	if err != nil {
		return nil, err
	}
	if conflicts.HasConflicts {
		return &Outcome{
			Message:   "Time conflict with: " + joinConflicts(conflicts.ConflictingCourses),
			Reason:    ReasonTimeConflict,
			Conflicts: conflicts.ConflictingCourses,
			Offering:  off,
		}, nil
	}

	if v.opts.EnforceCapacity {
		count, err := tx.CountEnrolled(ctx, off.OfferingID, true)
		if err != nil {
			return nil, err
		}
		if count >= off.MaxStudents {
			return &Outcome{
				Message:  fmt.Sprintf("%s is full (%d of %d seats taken).", off.Code, count, off.MaxStudents),
				Reason:   ReasonOfferingFull,
				Offering: off,
			}, nil
		}
	}

	e := &model.Enrollment{
		ID:         uuid.New(),
		StudentID:  studentID,
		OfferingID: off.OfferingID,
		Status:     model.EnrollmentEnrolled,
		EnrolledAt: v.opts.Now().UTC(),
	}
	if err := tx.InsertEnrollment(ctx, e); err != nil {
		return nil, err
	}
	return &Outcome{
		Success:    true,
		Message:    fmt.Sprintf("Successfully registered for %s %s.", off.Code, off.Name),
		Enrollment: e,
		Offering:   off,
	}, nil
}

// DropCourse removes the student's active enrollment in the offering.
// Completed and dropped enrollments are left untouched.
func (v *Validator) DropCourse(ctx context.Context, studentID, offeringID uuid.UUID) (*Outcome, error) {
	off, err := v.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	deleted, err := v.store.DeleteEnrollment(ctx, studentID, offeringID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &Outcome{
			Message:  fmt.Sprintf("You are not enrolled in %s.", off.Code),
			Reason:   ReasonNotEnrolled,
			Offering: off,
		}, nil
	}
	return &Outcome{
		Success:  true,
		Message:  fmt.Sprintf("Dropped %s %s.", off.Code, off.Name),
		Offering: off,
	}, nil
}

func (v *Validator) checkPrerequisites(ctx context.Context, s Store, studentID uuid.UUID, off *OfferingInfo) (*PrerequisiteResult, error) {
	edges, err := s.ListPrerequisites(ctx, off.CourseID)
	if err != nil {
		return nil, err
	}
	res := &PrerequisiteResult{Met: true, Missing: []MissingPrerequisite{}}
	if len(edges) == 0 {
		return res, nil
	}

	passed, err := s.ListPassedCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	// best non-failing grade per course
	best := make(map[uuid.UUID]model.Grade, len(passed))
	for _, p := range passed {
		if p.Grade.Failing() || !p.Grade.Valid() {
			continue
		}
		if cur, ok := best[p.CourseID]; !ok || p.Grade.Better(cur) {
			best[p.CourseID] = p.Grade
		}
	}

	for _, edge := range edges {
		grade, ok := best[edge.CourseID]
		if ok && v.opts.PrerequisiteMode == ModeMinimum && edge.MinGrade != nil {
			ok = grade.Meets(*edge.MinGrade)
		}
		if !ok {
			res.Missing = append(res.Missing, MissingPrerequisite{
				CourseID: edge.CourseID,
				Code:     edge.Code,
				Name:     edge.Name,
				MinGrade: edge.MinGrade,
			})
		}
	}
	res.Met = len(res.Missing) == 0
	return res, nil
}

func (v *Validator) checkCreditLimit(ctx context.Context, s Store, studentID uuid.UUID, off *OfferingInfo) (*CreditResult, error) {
	current, err := s.SumEnrolledCredits(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &CreditResult{
		Allowed: current+off.Credits <= v.opts.CreditCeiling,
		Current: current,
		Adding:  off.Credits,
		Max:     v.opts.CreditCeiling,
	}, nil
}

func checkTimeConflicts(ctx context.Context, s Store, studentID uuid.UUID, off *OfferingInfo) (*ConflictResult, error) {
	res := &ConflictResult{ConflictingCourses: []ConflictingCourse{}}
	if len(off.Slots) == 0 {
		return res, nil
	}

	enrolled, err := s.ListEnrolledSlots(ctx, studentID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	for _, slot := range off.Slots {
		for _, cur := range enrolled {
			if seen[cur.CourseID] || !Overlaps(slot, cur.Slot) {
				continue
			}
			seen[cur.CourseID] = true
			res.ConflictingCourses = append(res.ConflictingCourses, ConflictingCourse{
				CourseID:   cur.CourseID,
				OfferingID: cur.OfferingID,
				Code:       cur.Code,
				Name:       cur.Name,
				Day:        cur.Slot.Day,
				Time:       cur.Slot.TimeRange(),
			})
		}
	}
	res.HasConflicts = len(res.ConflictingCourses) > 0
	return res, nil
}

func alreadyEnrolled(off *OfferingInfo, status model.EnrollmentStatus) *Outcome {
	msg := fmt.Sprintf("You are already enrolled in %s.", off.Code)
	switch status {
	case model.EnrollmentCompleted:
		msg = fmt.Sprintf("You have already completed this offering of %s.", off.Code)
	case model.EnrollmentDropped:
		msg = fmt.Sprintf("You dropped this offering of %s; enroll in a later offering instead.", off.Code)
	}
	return &Outcome{Message: msg, Reason: ReasonAlreadyEnrolled, Offering: off}
}

func joinMissing(missing []MissingPrerequisite) string {
	parts := make([]string, len(missing))
	for i, m := range missing {
		parts[i] = m.Code + " " + m.Name
		if m.MinGrade != nil {
			parts[i] += " (minimum " + string(*m.MinGrade) + ")"
		}
	}
	return strings.Join(parts, ", ")
}

func joinConflicts(conflicts []ConflictingCourse) string {
	parts := make([]string, len(conflicts))
	for i, c := range conflicts {
		parts[i] = fmt.Sprintf("%s %s (%s %s)", c.Code, c.Name, c.Day, c.Time)
	}
	return strings.Join(parts, ", ")
}
