package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/unierp-backend/internal/model"
)

func TestLoadBundledCatalog(t *testing.T) {
	c, err := Load("../../seeds/catalog.yaml")
	require.NoError(t, err)

	assert.Len(t, c.Users, 5)
	assert.Len(t, c.Courses, 5)
	assert.Len(t, c.Offerings, 4)

	var cs201 Course
	for _, co := range c.Courses {
		if co.Code == "CS201" {
			cs201 = co
		}
	}
	require.Len(t, cs201.Prerequisites, 1)
	assert.Equal(t, "CS101", cs201.Prerequisites[0].Code)
	assert.Equal(t, "C", cs201.Prerequisites[0].MinGrade)

	slot, err := c.Offerings[0].Schedule[0].slot()
	require.NoError(t, err)
	assert.Equal(t, model.Monday, slot.Day)
	assert.Equal(t, "09:00-10:00", slot.TimeRange())
}

func TestParseCollectsEveryProblem(t *testing.T) {
	doc := `
users:
  - email: a@x
    name: A
    role: dean
  - email: s@x
    name: S
    role: student
courses:
  - code: CS101
    name: Intro
    credits: 0
  - code: CS101
    name: Intro again
    credits: 3
    prerequisites:
      - code: CS999
      - code: CS101
        min_grade: Z
offerings:
  - course: CS404
    semester: Autumn
    year: 1999
    professor: s@x
    max_students: 0
    schedule:
      - { day: monday, start: "09:00", end: "10:00" }
      - { day: Monday, start: "11:00", end: "10:00" }
      - { day: Monday, start: "25:00", end: "26:00" }
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)

	for _, want := range []string{
		`users[0]: unknown role "dean"`,
		`users[1]: student "s@x" needs a student_number`,
		`courses[0]: CS101 credits must be between 1 and 25`,
		`courses[1]: duplicate code "CS101"`,
		`requires unknown course "CS999"`,
		`CS101 cannot require itself`,
		`unknown grade "Z"`,
		`offerings[0]: unknown course "CS404"`,
		`unknown semester "Autumn"`,
		`year 1999 out of range`,
		`max_students must be positive`,
		`"s@x" is not a professor`,
		`offerings[0].schedule[0]`,
		`offerings[0].schedule[1]`,
		`invalid clock time "25:00"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("courses:\n  - code: CS101\n    credit: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field credit not found")
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse(nil)
	require.EqualError(t, err, "seed file is empty")
}

func TestParseAcceptsProfessorOutsideFile(t *testing.T) {
	doc := `
courses:
  - code: CS101
    name: Intro
    credits: 3
offerings:
  - course: CS101
    semester: Spring
    year: 2027
    professor: someone@uni.local
    max_students: 10
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "someone@uni.local", c.Offerings[0].Professor)
}
