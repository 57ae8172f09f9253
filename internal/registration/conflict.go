package registration

import "github.com/stemsi/unierp-backend/internal/model"

// Overlaps reports whether two weekly slots clash. Slots clash only on the
// same day, and touching endpoints do not clash.
func Overlaps(candidate, current model.ScheduleSlot) bool {
	if candidate.Day != current.Day {
		return false
	}
	ns, ne := candidate.Start, candidate.End
	cs, ce := current.Start, current.End
	return (ns >= cs && ns < ce) ||
		(ne > cs && ne <= ce) ||
		(ns <= cs && ne >= ce)
}
