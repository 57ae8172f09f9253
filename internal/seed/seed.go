// Package seed loads a YAML catalog (users, courses, prerequisites and
// offerings) and applies it to the database. Applying the same file twice
// leaves the database unchanged.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// Catalog is the root of a seed file.
type Catalog struct {
	Users     []User     `yaml:"users"`
	Courses   []Course   `yaml:"courses"`
	Offerings []Offering `yaml:"offerings"`
}

type User struct {
	Email         string     `yaml:"email"`
	Name          string     `yaml:"name"`
	Role          model.Role `yaml:"role"`
	StudentNumber string     `yaml:"student_number"`
}

type Course struct {
	Code          string         `yaml:"code"`
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	Credits       int            `yaml:"credits"`
	Department    string         `yaml:"department"`
	Prerequisites []Prerequisite `yaml:"prerequisites"`
}

type Prerequisite struct {
	Code     string `yaml:"code"`
	MinGrade string `yaml:"min_grade"`
}

type Offering struct {
	Course      string         `yaml:"course"`
	Semester    model.Semester `yaml:"semester"`
	Year        int            `yaml:"year"`
	Professor   string         `yaml:"professor"`
	MaxStudents int            `yaml:"max_students"`
	Location    string         `yaml:"location"`
	Schedule    []Slot         `yaml:"schedule"`
}

type Slot struct {
	Day   model.Weekday `yaml:"day"`
	Start string        `yaml:"start"`
	End   string        `yaml:"end"`
}

// Load reads and validates the seed file at path.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a seed document and reports every problem it finds at once.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); errors.Is(err, io.EOF) {
		return nil, errors.New("seed file is empty")
	} else if err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	users := make(map[string]model.Role, len(c.Users))
	for i, u := range c.Users {
		if u.Email == "" {
			add("users[%d]: email is required", i)
			continue
		}
		if _, dup := users[u.Email]; dup {
			add("users[%d]: duplicate email %q", i, u.Email)
		}
		if !u.Role.Valid() {
			add("users[%d]: unknown role %q", i, u.Role)
		}
		if u.Role == model.RoleStudent && u.StudentNumber == "" {
			add("users[%d]: student %q needs a student_number", i, u.Email)
		}
		users[u.Email] = u.Role
	}

	codes := make(map[string]struct{}, len(c.Courses))
	for i, co := range c.Courses {
		if co.Code == "" {
			add("courses[%d]: code is required", i)
			continue
		}
		if _, dup := codes[co.Code]; dup {
			add("courses[%d]: duplicate code %q", i, co.Code)
		}
		codes[co.Code] = struct{}{}
		if co.Credits < 1 || co.Credits > 25 {
			add("courses[%d]: %s credits must be between 1 and 25", i, co.Code)
		}
	}
	for i, co := range c.Courses {
		for _, p := range co.Prerequisites {
			if _, ok := codes[p.Code]; !ok {
				add("courses[%d]: %s requires unknown course %q", i, co.Code, p.Code)
			}
			if p.Code == co.Code {
				add("courses[%d]: %s cannot require itself", i, co.Code)
			}
			if p.MinGrade != "" {
				if _, err := model.ParseGrade(p.MinGrade); err != nil {
					add("courses[%d]: %s: %w", i, co.Code, err)
				}
			}
		}
	}

	for i, o := range c.Offerings {
		if _, ok := codes[o.Course]; !ok {
			add("offerings[%d]: unknown course %q", i, o.Course)
		}
		if !o.Semester.Valid() {
			add("offerings[%d]: unknown semester %q", i, o.Semester)
		}
		if o.Year < 2000 || o.Year > 2100 {
			add("offerings[%d]: year %d out of range", i, o.Year)
		}
		if o.MaxStudents < 1 {
			add("offerings[%d]: max_students must be positive", i)
		}
		if role, ok := users[o.Professor]; ok && role != model.RoleProfessor {
			add("offerings[%d]: %q is not a professor", i, o.Professor)
		}
		for j, s := range o.Schedule {
			if _, err := s.slot(); err != nil {
				add("offerings[%d].schedule[%d]: %w", i, j, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s Slot) slot() (model.ScheduleSlot, error) {
	start, err := model.ParseClockTime(s.Start)
	if err != nil {
		return model.ScheduleSlot{}, err
	}
	end, err := model.ParseClockTime(s.End)
	if err != nil {
		return model.ScheduleSlot{}, err
	}
	slot := model.ScheduleSlot{Day: s.Day, Start: start, End: end}
	return slot, slot.Validate()
}

// Repositories are the writers Apply needs.
type Repositories struct {
	Users     *repository.UserRepository
	Courses   *repository.CourseRepository
	Offerings *repository.OfferingRepository
}

// Result counts what Apply touched.
type Result struct {
	Users            int
	Courses          int
	Prerequisites    int
	OfferingsCreated int
	OfferingsUpdated int
}

// Apply upserts the catalog. Users are keyed by email, courses by code and
// offerings by course and term. Professors not listed in the file are looked
// up by email.
func Apply(ctx context.Context, c *Catalog, repos Repositories, log zerolog.Logger) (Result, error) {
	var res Result

	profs := make(map[string]uuid.UUID)
	for _, u := range c.Users {
		user := &model.User{Email: u.Email, Name: u.Name, Role: u.Role}
		if u.StudentNumber != "" {
			sn := u.StudentNumber
			user.StudentNumber = &sn
		}
		if err := repos.Users.Upsert(ctx, user); err != nil {
			return res, fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
		if u.Role == model.RoleProfessor {
			profs[u.Email] = user.ID
		}
		res.Users++
	}

	courses := make(map[string]uuid.UUID, len(c.Courses))
	for _, co := range c.Courses {
		course := &model.Course{
			Code:        co.Code,
			Name:        co.Name,
			Description: co.Description,
			Credits:     co.Credits,
			Department:  co.Department,
		}
		if err := repos.Courses.Upsert(ctx, course); err != nil {
			return res, fmt.Errorf("upsert course %s: %w", co.Code, err)
		}
		courses[co.Code] = course.ID
		res.Courses++
	}
	for _, co := range c.Courses {
		for _, p := range co.Prerequisites {
			var minGrade *model.Grade
			if p.MinGrade != "" {
				g, _ := model.ParseGrade(p.MinGrade)
				minGrade = &g
			}
			if err := repos.Courses.AddPrerequisite(ctx, courses[co.Code], courses[p.Code], minGrade); err != nil {
				return res, fmt.Errorf("link %s -> %s: %w", co.Code, p.Code, err)
			}
			res.Prerequisites++
		}
	}

	for _, o := range c.Offerings {
		slots := make([]model.ScheduleSlot, 0, len(o.Schedule))
		for _, s := range o.Schedule {
			slot, _ := s.slot()
			slots = append(slots, slot)
		}
		var prof *uuid.UUID
		if o.Professor != "" {
			id, ok := profs[o.Professor]
			if !ok {
				u, err := repos.Users.GetByEmail(ctx, o.Professor)
				if err != nil {
					return res, fmt.Errorf("resolve professor %s: %w", o.Professor, err)
				}
				id = u.ID
			}
			prof = &id
		}

		courseID := courses[o.Course]
		existing, err := repos.Offerings.FindByCourseTerm(ctx, courseID, o.Semester, o.Year)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			off := &model.CourseOffering{
				CourseID:    courseID,
				Semester:    o.Semester,
				Year:        o.Year,
				ProfessorID: prof,
				MaxStudents: o.MaxStudents,
				Location:    o.Location,
				Schedule:    slots,
			}
			if err := repos.Offerings.Create(ctx, off); err != nil {
				return res, fmt.Errorf("create offering %s %s %d: %w", o.Course, o.Semester, o.Year, err)
			}
			res.OfferingsCreated++
		case err != nil:
			return res, fmt.Errorf("find offering %s %s %d: %w", o.Course, o.Semester, o.Year, err)
		default:
			upd := model.OfferingUpdate{
				ProfessorID: prof,
				MaxStudents: &o.MaxStudents,
				Location:    &o.Location,
			}
			if _, err := repos.Offerings.Update(ctx, existing.ID, upd); err != nil {
				return res, fmt.Errorf("update offering %s %s %d: %w", o.Course, o.Semester, o.Year, err)
			}
			if err := repos.Offerings.ReplaceSchedule(ctx, existing.ID, slots); err != nil {
				return res, fmt.Errorf("replace schedule %s %s %d: %w", o.Course, o.Semester, o.Year, err)
			}
			res.OfferingsUpdated++
		}
	}

	log.Info().
		Int("users", res.Users).
		Int("courses", res.Courses).
		Int("prerequisites", res.Prerequisites).
		Int("offerings_created", res.OfferingsCreated).
		Int("offerings_updated", res.OfferingsUpdated).
		Msg("Seed applied")
	return res, nil
}
