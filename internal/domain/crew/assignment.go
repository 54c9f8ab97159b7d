// Package crew decides which registrations of an event form its crew and keeps
// slot assignments consistent with the registration list.
package crew

import (
	"slices"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
)

// RepairAssignments returns a copy of event in which every slot assignment
// that does not reference a current registration is cleared. When several slots
// reference the same registration only the first one keeps it.
func RepairAssignments(event entities.Event) entities.Event {
	out := event.Clone()
	known := make(map[entities.RegistrationKey]bool, len(out.Registrations))
	for _, r := range out.Registrations {
		known[r.Key] = true
	}
	taken := make(map[entities.RegistrationKey]bool)
	for i := range out.Slots {
		key := out.Slots[i].AssignedRegistration
		if key == "" {
			continue
		}
		if !known[key] || taken[key] {
			out.Slots[i].AssignedRegistration = ""
			continue
		}
		taken[key] = true
	}
	return out
}

// ValidateAssignments rejects slot lists that assign one registration twice.
func ValidateAssignments(slots []entities.Slot) error {
	seen := make(map[entities.RegistrationKey]bool)
	for _, s := range slots {
		if !s.IsAssigned() {
			continue
		}
		if seen[s.AssignedRegistration] {
			return domain.ErrDuplicateAssignment
		}
		seen[s.AssignedRegistration] = true
	}
	return nil
}

// AssignedKeys returns the set of registration keys referenced by slots.
func AssignedKeys(slots []entities.Slot) map[entities.RegistrationKey]bool {
	out := make(map[entities.RegistrationKey]bool)
	for _, s := range slots {
		if s.IsAssigned() {
			out[s.AssignedRegistration] = true
		}
	}
	return out
}

// Diff lists registrations that joined or left the crew. Both lists are sorted.
type Diff struct {
	Added   []entities.RegistrationKey
	Removed []entities.RegistrationKey
}

func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffAssignments computes added = after - before and removed = before - after
// over the assigned registration keys of both slot lists.
func DiffAssignments(before, after []entities.Slot) Diff {
	b := AssignedKeys(before)
	a := AssignedKeys(after)
	return Diff{
		Added:   minus(a, b),
		Removed: minus(b, a),
	}
}

func minus(x, y map[entities.RegistrationKey]bool) []entities.RegistrationKey {
	var out []entities.RegistrationKey
	for k := range x {
		if !y[k] {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
