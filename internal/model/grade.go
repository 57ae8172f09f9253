package model

import (
	"fmt"
	"strings"
)

// Grade is a final letter grade recorded on a completed enrollment.
type Grade string

const (
	GradeAPlus    Grade = "A+"
	GradeA        Grade = "A"
	GradeAMinus   Grade = "A-"
	GradeBPlus    Grade = "B+"
	GradeB        Grade = "B"
	GradeBMinus   Grade = "B-"
	GradeCPlus    Grade = "C+"
	GradeC        Grade = "C"
	GradeCMinus   Grade = "C-"
	GradeDPlus    Grade = "D+"
	GradeD        Grade = "D"
	GradeDMinus   Grade = "D-"
	GradeF        Grade = "F"
	GradePass     Grade = "P"
	GradeNoCredit Grade = "NC"
)

// FailingGrades never satisfy a prerequisite.
var FailingGrades = []Grade{GradeF, GradeNoCredit}

var gradeRank = map[Grade]int{
	GradeAPlus:    12,
	GradeA:        11,
	GradeAMinus:   10,
	GradeBPlus:    9,
	GradeB:        8,
	GradeBMinus:   7,
	GradeCPlus:    6,
	GradeC:        5,
	GradeCMinus:   4,
	GradeDPlus:    3,
	GradeD:        2,
	GradeDMinus:   1,
	GradeF:        0,
	GradePass:     5, // a pass counts as a C
	GradeNoCredit: 0,
}

// ParseGrade normalizes s and checks it against the grade scale.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade %q", s)
	}
	return g, nil
}

// Valid reports whether g is on the grade scale.
func (g Grade) Valid() bool {
	_, ok := gradeRank[g]
	return ok
}

// Failing reports whether g is in the failing set.
func (g Grade) Failing() bool {
	for _, f := range FailingGrades {
		if g == f {
			return true
		}
	}
	return false
}

// Meets reports whether g is at least threshold. Failing and unknown grades never meet anything.
func (g Grade) Meets(threshold Grade) bool {
	if g.Failing() {
		return false
	}
	have, ok := gradeRank[g]
	if !ok {
		return false
	}
	want, ok := gradeRank[threshold]
	if !ok {
		return false
	}
	return have >= want
}

// Better reports whether g ranks strictly above other.
func (g Grade) Better(other Grade) bool {
	return gradeRank[g] > gradeRank[other]
}
