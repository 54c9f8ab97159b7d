// Package visibility redacts events for the caller that reads them.
package visibility

import (
	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
)

// FilterForCaller returns the copy of event the caller may see, or false when
// the event must not be shown at all. The input is never modified.
func FilterForCaller(caller entities.SignedInUser, event entities.Event) (entities.Event, bool) {
	canWriteSlots := caller.HasPermission(domain.PermissionWriteEventSlots)
	canWriteDetails := caller.HasPermission(domain.PermissionWriteEventDetails)

	if event.State == entities.EventStateDraft && !canWriteSlots && !canWriteDetails {
		return entities.Event{}, false
	}
	if event.State == entities.EventStateCanceled {
		if _, ok := event.RegistrationOf(caller.Key); !ok {
			return entities.Event{}, false
		}
	}
	if canWriteSlots {
		return event.Clone(), true
	}

	out := event.Clone()
	if out.State.IsPrePlanning() {
		for i := range out.Slots {
			out.Slots[i].AssignedRegistration = ""
		}
	}
	for i := range out.Registrations {
		if caller.Key == "" || out.Registrations[i].User != caller.Key {
			out.Registrations[i].Note = ""
			out.Registrations[i].AccessKey = ""
		}
	}
	return out, true
}

// FilterAll applies FilterForCaller to every event and drops hidden ones.
func FilterAll(caller entities.SignedInUser, events []entities.Event) []entities.Event {
	out := make([]entities.Event, 0, len(events))
	for _, e := range events {
		if visible, ok := FilterForCaller(caller, e); ok {
			out = append(out, visible)
		}
	}
	return out
}
