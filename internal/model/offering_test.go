package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(9*3600+30*60+15), ct)
	assert.Equal(t, "09:30:15", ct.String())
	assert.Equal(t, "09:30", ct.Short())

	short, err := ParseClockTime("14:05")
	require.NoError(t, err)
	assert.Equal(t, "14:05:00", short.String())

	for _, bad := range []string{"", "24:00:00", "12:60", "9:30", "noon", "12:00:00:00", " 9:30", "+1:30", "-1:30", "09:3a", "09-30", "09:30: 5"} {
		_, err := ParseClockTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockTimeJSON(t *testing.T) {
	slot := ScheduleSlot{Day: Monday, Start: MustClockTime("10:00"), End: MustClockTime("11:30")}
	b, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"start_time":"10:00:00"`)
	assert.Contains(t, string(b), `"end_time":"11:30:00"`)

	var in ScheduleSlotInput
	require.NoError(t, json.Unmarshal([]byte(`{"day_of_week":"Tuesday","start_time":"08:00","end_time":"09:15:00"}`), &in))
	assert.Equal(t, Tuesday, in.Day)
	assert.Equal(t, "08:00-09:15", in.Slot().TimeRange())

	assert.Error(t, json.Unmarshal([]byte(`{"start_time":"8am"}`), &in))
}

func TestScheduleSlotValidate(t *testing.T) {
	ok := ScheduleSlot{Day: Friday, Start: MustClockTime("10:00"), End: MustClockTime("11:00")}
	assert.NoError(t, ok.Validate())

	empty := ok
	empty.End = empty.Start
	assert.ErrorIs(t, empty.Validate(), ErrInvalidSlot)

	lower := ok
	lower.Day = "monday"
	assert.ErrorIs(t, lower.Validate(), ErrInvalidSlot)
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, Monday.Index())
	assert.Equal(t, 6, Sunday.Index())
	assert.Equal(t, -1, Weekday("Mon").Index())
}

func TestEnrollmentTransitions(t *testing.T) {
	assert.True(t, EnrollmentEnrolled.CanTransitionTo(EnrollmentCompleted))
	assert.True(t, EnrollmentEnrolled.CanTransitionTo(EnrollmentDropped))
	assert.False(t, EnrollmentCompleted.CanTransitionTo(EnrollmentDropped))
	assert.False(t, EnrollmentDropped.CanTransitionTo(EnrollmentEnrolled))
	assert.False(t, EnrollmentEnrolled.CanTransitionTo(EnrollmentEnrolled))
}

func TestRoleCan(t *testing.T) {
	assert.True(t, RoleStudent.Can(PermissionRegistrationSelf))
	assert.False(t, RoleStudent.Can(PermissionGradesWrite))
	assert.True(t, RoleProfessor.Can(PermissionGradesWrite))
	assert.True(t, RoleAdmin.Can(PermissionUsersWrite))
	assert.False(t, Role("guest").Can(PermissionCatalogRead))
}

func TestTermOf(t *testing.T) {
	cases := map[time.Month]Semester{
		time.January:  SemesterWinter,
		time.February: SemesterSpring,
		time.May:      SemesterSpring,
		time.June:     SemesterSummer,
		time.July:     SemesterSummer,
		time.August:   SemesterFall,
		time.December: SemesterFall,
	}
	for month, want := range cases {
		sem, year := TermOf(time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, want, sem, month.String())
		assert.Equal(t, 2026, year)
	}
}
