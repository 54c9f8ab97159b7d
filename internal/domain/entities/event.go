package entities

import "time"

type EventState string

const (
	EventStateDraft         EventState = "DRAFT"
	EventStateOpenForSignup EventState = "OPEN_FOR_SIGNUP"
	EventStatePlanned       EventState = "PLANNED"
	EventStateCanceled      EventState = "CANCELED"
)

// Valid reports whether s is one of the known states.
func (s EventState) Valid() bool {
	switch s {
	case EventStateDraft, EventStateOpenForSignup, EventStatePlanned, EventStateCanceled:
		return true
	}
	return false
}

// IsPrePlanning reports whether crew planning is not yet published in this state.
func (s EventState) IsPrePlanning() bool {
	return s == EventStateDraft || s == EventStateOpenForSignup
}

// Location is one stop of a voyage.
type Location struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Address     string `json:"address,omitempty"`
	Country     string `json:"country,omitempty"`
	Information string `json:"information,omitempty"`
}

// Event is a voyage with its crew slots and registrations.
type Event struct {
	Key                      EventKey
	Name                     string
	State                    EventState
	Note                     string
	Description              string
	Start                    time.Time
	End                      time.Time
	Locations                []Location
	Slots                    []Slot
	Registrations            []Registration
	ConfirmationRequestsSent int
}

// Clone returns a deep copy of e. Mutations on the copy never reach e.
func (e Event) Clone() Event {
	out := e
	out.Locations = append([]Location(nil), e.Locations...)
	out.Slots = make([]Slot, len(e.Slots))
	for i := range e.Slots {
		out.Slots[i] = e.Slots[i].clone()
	}
	out.Registrations = make([]Registration, len(e.Registrations))
	for i := range e.Registrations {
		out.Registrations[i] = e.Registrations[i].clone()
	}
	return out
}

// Registration returns the registration with the given key.
func (e Event) Registration(key RegistrationKey) (Registration, bool) {
	for _, r := range e.Registrations {
		if r.Key == key {
			return r, true
		}
	}
	return Registration{}, false
}

// RegistrationOf returns the registration held by user.
func (e Event) RegistrationOf(user UserKey) (Registration, bool) {
	if user == "" {
		return Registration{}, false
	}
	for _, r := range e.Registrations {
		if r.User == user {
			return r, true
		}
	}
	return Registration{}, false
}

// SlotOf returns the slot the registration is assigned to.
func (e Event) SlotOf(key RegistrationKey) (Slot, bool) {
	if key == "" {
		return Slot{}, false
	}
	for _, s := range e.Slots {
		if s.AssignedRegistration == key {
			return s, true
		}
	}
	return Slot{}, false
}

// IsAssigned reports whether the registration is part of the crew.
func (e Event) IsAssigned(key RegistrationKey) bool {
	_, ok := e.SlotOf(key)
	return ok
}

// WithoutRegistration returns a copy of e without the given registration.
// Slots still referencing it are left for the assignment repair to clear.
func (e Event) WithoutRegistration(key RegistrationKey) Event {
	out := e.Clone()
	regs := out.Registrations[:0]
	for _, r := range out.Registrations {
		if r.Key != key {
			regs = append(regs, r)
		}
	}
	out.Registrations = regs
	return out
}

// StartsAfter reports whether the event has a start and it lies after now.
func (e Event) StartsAfter(now time.Time) bool {
	return !e.Start.IsZero() && e.Start.After(now)
}
