package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade(" b+ ")
	require.NoError(t, err)
	assert.Equal(t, GradeBPlus, g)

	_, err = ParseGrade("E")
	assert.Error(t, err)
}

func TestGradeFailing(t *testing.T) {
	assert.True(t, GradeF.Failing())
	assert.True(t, GradeNoCredit.Failing())
	assert.False(t, GradeDMinus.Failing())
	assert.False(t, GradePass.Failing())
}

func TestGradeMeets(t *testing.T) {
	cases := []struct {
		grade, min Grade
		want       bool
	}{
		{GradeB, GradeC, true},
		{GradeC, GradeC, true},
		{GradeCMinus, GradeC, false},
		{GradePass, GradeC, true},
		{GradePass, GradeCPlus, false},
		{GradeF, GradeF, false},
		{GradeNoCredit, GradeDMinus, false},
		{Grade("Z"), GradeDMinus, false},
	}
	for _, c := range cases {
		t.Run(string(c.grade)+"_vs_"+string(c.min), func(t *testing.T) {
			assert.Equal(t, c.want, c.grade.Meets(c.min))
		})
	}
}

func TestGradeBetter(t *testing.T) {
	assert.True(t, GradeA.Better(GradeB))
	assert.False(t, GradeB.Better(GradeA))
	assert.False(t, GradeB.Better(GradeB))
}
