package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(day model.Weekday, start, end string) model.ScheduleSlot {
	return model.ScheduleSlot{Day: day, Start: model.MustClockTime(start), End: model.MustClockTime(end)}
}

func TestBuildTimetable(t *testing.T) {
	cs := TimetableCourse{OfferingID: uuid.New(), Code: "CS201", Name: "Data Structures", Location: "B-101",
		Schedule: []model.ScheduleSlot{slot(model.Wednesday, "10:00", "11:30"), slot(model.Monday, "10:00", "11:30")}}
	math := TimetableCourse{OfferingID: uuid.New(), Code: "MATH101", Name: "Calculus I",
		Schedule: []model.ScheduleSlot{slot(model.Monday, "08:00", "09:30"), slot(model.Friday, "13:00", "14:00")}}
	seminar := TimetableCourse{OfferingID: uuid.New(), Code: "AAA100", Name: "Seminar",
		Schedule: []model.ScheduleSlot{slot(model.Monday, "10:00", "11:00")}}

	days := BuildTimetable([]TimetableCourse{cs, math, seminar})
	require.Len(t, days, 3)
	assert.Equal(t, []model.Weekday{model.Monday, model.Wednesday, model.Friday},
		[]model.Weekday{days[0].Day, days[1].Day, days[2].Day})

	monday := days[0].Entries
	require.Len(t, monday, 3)
	assert.Equal(t, "MATH101", monday[0].CourseCode)
	assert.Equal(t, "AAA100", monday[1].CourseCode, "same start orders by code")
	assert.Equal(t, "CS201", monday[2].CourseCode)
	assert.Equal(t, "B-101", monday[2].Location)
}

func TestBuildTimetableEmpty(t *testing.T) {
	days := BuildTimetable(nil)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestNormalizePage(t *testing.T) {
	page, perPage, offset := normalizePage(0, 0)
	assert.Equal(t, []int{1, 20, 0}, []int{page, perPage, offset})

	page, perPage, offset = normalizePage(3, 500)
	assert.Equal(t, []int{3, 100, 200}, []int{page, perPage, offset})
}
