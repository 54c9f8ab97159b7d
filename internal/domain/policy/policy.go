// Package policy maps every public operation to the permission predicate a
// caller has to satisfy before the operation touches any state.
package policy

import (
	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
)

type Operation string

const (
	ReadEvents         Operation = "events.read"
	CreateEvent        Operation = "events.create"
	UpdateEventDetails Operation = "events.update_details"
	SetSlots           Operation = "events.set_slots"
	DeleteEvent        Operation = "events.delete"
	AddRegistration    Operation = "registrations.add"
	UpdateRegistration Operation = "registrations.update"
	RemoveRegistration Operation = "registrations.remove"
)

// Subject carries what a predicate needs to know about the target.
type Subject struct {
	// RegistrationUser is the user owning the registration being written;
	// empty for guest registrations.
	RegistrationUser entities.UserKey
}

// Requirement is a permission predicate.
type Requirement func(caller entities.SignedInUser, subject Subject) error

var table = map[Operation]Requirement{
	ReadEvents:         requires(domain.PermissionReadEvents),
	CreateEvent:        requires(domain.PermissionCreateEvents),
	UpdateEventDetails: requires(domain.PermissionWriteEventDetails),
	SetSlots:           requires(domain.PermissionWriteEventSlots),
	DeleteEvent:        requires(domain.PermissionDeleteEvents),
	AddRegistration:    registrationWrite,
	UpdateRegistration: registrationWrite,
	RemoveRegistration: registrationWrite,
}

func requires(p domain.Permission) Requirement {
	return func(caller entities.SignedInUser, _ Subject) error {
		return caller.AssertHasPermission(p)
	}
}

// registrationWrite lets callers manage their own registration with either
// registration permission; anyone else's (or a guest's) needs the general one.
func registrationWrite(caller entities.SignedInUser, subject Subject) error {
	if !caller.IsAnonymous() && subject.RegistrationUser == caller.Key {
		return caller.AssertHasAnyPermission(
			domain.PermissionWriteOwnRegistrations,
			domain.PermissionWriteRegistrations,
		)
	}
	return caller.AssertHasPermission(domain.PermissionWriteRegistrations)
}

// Check evaluates the requirement registered for op.
func Check(op Operation, caller entities.SignedInUser, subject Subject) error {
	req, ok := table[op]
	if !ok {
		return domain.New(domain.CodeInternal, "no policy registered for "+string(op))
	}
	return req(caller, subject)
}

// IsSelf reports whether the caller acts on their own registration.
func IsSelf(caller entities.SignedInUser, subject Subject) bool {
	return !caller.IsAnonymous() && subject.RegistrationUser == caller.Key
}
