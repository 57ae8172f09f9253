package registration

import (
	"testing"

	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func slot(day model.Weekday, start, end string) model.ScheduleSlot {
	return model.ScheduleSlot{Day: day, Start: model.MustClockTime(start), End: model.MustClockTime(end)}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b model.ScheduleSlot
		want bool
	}{
		{"touching end to start", slot(model.Monday, "10:00", "11:00"), slot(model.Monday, "11:00", "12:00"), false},
		{"fully nested", slot(model.Monday, "10:00", "11:30"), slot(model.Monday, "10:30", "11:00"), true},
		{"partial overlap", slot(model.Monday, "09:00", "10:30"), slot(model.Monday, "10:00", "11:00"), true},
		{"identical", slot(model.Tuesday, "13:00", "14:00"), slot(model.Tuesday, "13:00", "14:00"), true},
		{"same start", slot(model.Tuesday, "13:00", "13:30"), slot(model.Tuesday, "13:00", "14:00"), true},
		{"same end", slot(model.Tuesday, "13:30", "14:00"), slot(model.Tuesday, "13:00", "14:00"), true},
		{"disjoint", slot(model.Monday, "08:00", "09:00"), slot(model.Monday, "15:00", "16:00"), false},
		{"different day", slot(model.Monday, "10:00", "11:00"), slot(model.Wednesday, "10:00", "11:00"), false},
		{"day names compared exactly", slot(model.Monday, "10:00", "11:00"), slot("monday", "10:00", "11:00"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Overlaps(c.a, c.b))
			assert.Equal(t, c.want, Overlaps(c.b, c.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetricGrid(t *testing.T) {
	times := []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00"}
	for i := range times {
		for j := i + 1; j < len(times); j++ {
			for k := range times {
				for l := k + 1; l < len(times); l++ {
					a := slot(model.Friday, times[i], times[j])
					b := slot(model.Friday, times[k], times[l])
					halfOpen := a.Start < b.End && b.Start < a.End
					assert.Equal(t, halfOpen, Overlaps(a, b), "%s vs %s", a.TimeRange(), b.TimeRange())
					assert.Equal(t, Overlaps(a, b), Overlaps(b, a))
				}
			}
		}
	}
}
