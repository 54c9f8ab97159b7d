package crew

import (
	"slices"

	"eventplanner/internal/domain/entities"
)

// OptimizeSlots orders the slots by their order value and, among slots of
// equal order, puts filled ones before open ones, so open slots collect at
// the end where they stay usable for later assignments. Assignments are never
// moved: every slot keeps the registration a planner put into it.
func OptimizeSlots(event entities.Event) entities.Event {
	out := event.Clone()
	slices.SortStableFunc(out.Slots, func(a, b entities.Slot) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return openRank(a) - openRank(b)
	})
	return out
}

func openRank(s entities.Slot) int {
	if s.IsAssigned() {
		return 0
	}
	return 1
}
