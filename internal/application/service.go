package application

import (
	"errors"
	"time"

	"eventplanner/internal/domain/crew"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/domain/visibility"
)

// Clock returns the current time. A nil Clock uses time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// errUnchanged aborts a Mutate without writing when the operation turns out
// to be a no-op.
var errUnchanged = errors.New("unchanged")

// consistent repairs slot assignments and, while crew planning is not yet
// published, moves open slots behind filled ones of the same order.
func consistent(event entities.Event) entities.Event {
	out := crew.RepairAssignments(event)
	if out.State.IsPrePlanning() {
		out = crew.OptimizeSlots(out)
	}
	return out
}

// crewDiff is the assignment change announced for a before/after pair.
// Publishing a plan announces everybody currently on it.
func crewDiff(before, after entities.Event) crew.Diff {
	if before.State.IsPrePlanning() && after.State == entities.EventStatePlanned {
		return crew.DiffAssignments(nil, after.Slots)
	}
	return crew.DiffAssignments(before.Slots, after.Slots)
}

// announcesCrew reports whether assignment changes on event reach the crew.
func announcesCrew(event entities.Event, now time.Time) bool {
	return event.State == entities.EventStatePlanned && event.StartsAfter(now)
}

// view returns what caller may see of event. An event that became invisible
// through the caller's own change is returned with its key only.
func view(caller entities.SignedInUser, event entities.Event) entities.Event {
	if out, ok := visibility.FilterForCaller(caller, event); ok {
		return out
	}
	return entities.Event{Key: event.Key}
}

func assignSlotKeys(slots []entities.Slot) []entities.Slot {
	out := make([]entities.Slot, len(slots))
	copy(out, slots)
	for i := range out {
		if out[i].Key == "" {
			out[i].Key = entities.NewSlotKey()
		}
	}
	return out
}
