package application

import (
	"context"
	"errors"
	"strings"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/domain/policy"
	"eventplanner/internal/domain/visibility"
	"eventplanner/internal/ports/input"
	"eventplanner/internal/ports/output"
)

var _ input.RegistrationUseCase = (*RegistrationService)(nil)

type RegistrationService struct {
	store    output.EventStore
	notifier *Notifier
	clock    Clock
}

func NewRegistrationService(store output.EventStore, notifier *Notifier, clock Clock) *RegistrationService {
	return &RegistrationService{
		store:    store,
		notifier: notifier,
		clock:    clock,
	}
}

// AddRegistration signs a user or a guest up for an event. Signing up a user
// who already holds a registration returns the event unchanged.
func (s *RegistrationService) AddRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, spec input.RegistrationSpec) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "RegistrationService.AddRegistration", eventKey)
	defer func() { endSpan(span, err) }()

	spec.Name = strings.TrimSpace(spec.Name)
	// Without a user key the policy sees a guest signup, so malformed requests
	// are rejected before it.
	if (spec.User == "") == (spec.Name == "") {
		return entities.Event{}, domain.ErrUserOrGuestRequired
	}
	if spec.Position == "" {
		return entities.Event{}, domain.ErrPositionRequired
	}
	subject := policy.Subject{RegistrationUser: spec.User}
	if err := policy.Check(policy.AddRegistration, caller, subject); err != nil {
		return entities.Event{}, err
	}
	if err := s.assertVisible(ctx, caller, eventKey); err != nil {
		return entities.Event{}, err
	}

	var (
		unchanged entities.Event
		added     entities.Registration
	)
	after, err := s.store.Mutate(ctx, eventKey, func(current entities.Event) (entities.Event, error) {
		if _, ok := current.RegistrationOf(spec.User); ok {
			unchanged = current
			return entities.Event{}, errUnchanged
		}
		if spec.User == "" && hasGuest(current, spec.Name, "") {
			return entities.Event{}, domain.ErrDuplicateGuestName
		}
		added = entities.Registration{
			Key:       entities.NewRegistrationKey(),
			Position:  spec.Position,
			User:      spec.User,
			Name:      spec.Name,
			Note:      spec.Note,
			AccessKey: entities.NewAccessKey(),
		}
		next := current.Clone()
		next.Registrations = append(next.Registrations, added)
		return consistent(next), nil
	})
	if errors.Is(err, errUnchanged) {
		return view(caller, unchanged), nil
	}
	if err != nil {
		return entities.Event{}, err
	}

	s.notifier.toRegistrant(ctx, entities.NotificationAddedToWaitingList, after, added, nil)
	if policy.IsSelf(caller, subject) {
		s.notifier.toRole(ctx, entities.NotificationNewRegistration, domain.RoleTeamPlanner, after, added, nil)
	}
	return view(caller, after), nil
}

func (s *RegistrationService) UpdateRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, registrationKey entities.RegistrationKey, spec input.UpdateRegistrationSpec) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "RegistrationService.UpdateRegistration", eventKey)
	defer func() { endSpan(span, err) }()

	if err := s.authorize(ctx, policy.UpdateRegistration, caller, eventKey, registrationKey); err != nil {
		return entities.Event{}, err
	}
	if spec.Position != nil && *spec.Position == "" {
		return entities.Event{}, domain.ErrPositionRequired
	}

	now := s.clock.now()
	after, err := s.store.Mutate(ctx, eventKey, func(current entities.Event) (entities.Event, error) {
		next := current.Clone()
		i := registrationIndex(next, registrationKey)
		if i < 0 {
			return entities.Event{}, domain.ErrRegistrationNotFound
		}
		reg := &next.Registrations[i]
		if spec.Position != nil {
			reg.Position = *spec.Position
		}
		if spec.Name != nil && reg.IsGuest() {
			name := strings.TrimSpace(*spec.Name)
			if name == "" {
				return entities.Event{}, domain.ErrUserOrGuestRequired
			}
			if hasGuest(next, name, reg.Key) {
				return entities.Event{}, domain.ErrDuplicateGuestName
			}
			reg.Name = name
		}
		if spec.Note != nil {
			reg.Note = *spec.Note
		}
		if spec.Confirmed != nil {
			switch {
			case *spec.Confirmed && reg.ConfirmedAt == nil:
				confirmedAt := now
				reg.ConfirmedAt = &confirmedAt
			case !*spec.Confirmed:
				reg.ConfirmedAt = nil
			}
		}
		return consistent(next), nil
	})
	if err != nil {
		return entities.Event{}, err
	}
	return view(caller, after), nil
}

// RemoveRegistration deletes a registration and frees the slot it held.
func (s *RegistrationService) RemoveRegistration(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey, registrationKey entities.RegistrationKey) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "RegistrationService.RemoveRegistration", eventKey)
	defer func() { endSpan(span, err) }()

	if err := s.authorize(ctx, policy.RemoveRegistration, caller, eventKey, registrationKey); err != nil {
		return entities.Event{}, err
	}

	var (
		before  entities.Event
		removed entities.Registration
	)
	after, err := s.store.Mutate(ctx, eventKey, func(current entities.Event) (entities.Event, error) {
		reg, ok := current.Registration(registrationKey)
		if !ok {
			return entities.Event{}, domain.ErrRegistrationNotFound
		}
		before, removed = current, reg
		return consistent(current.WithoutRegistration(registrationKey)), nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	// Crew of an unpublished plan is still on the waiting list for its members.
	if !before.IsAssigned(removed.Key) || before.State != entities.EventStatePlanned {
		s.notifier.toRegistrant(ctx, entities.NotificationRemovedFromWaitingList, after, removed, nil)
	} else if announcesCrew(after, s.clock.now()) {
		s.notifier.toRegistrant(ctx, entities.NotificationRemovedFromCrew, after, removed, nil)
		if policy.IsSelf(caller, policy.Subject{RegistrationUser: removed.User}) {
			s.notifier.toRole(ctx, entities.NotificationCrewRegistrationCanceled, domain.RoleTeamPlanner, after, removed, nil)
		}
	}
	return view(caller, after), nil
}

// authorize evaluates op against the owner of the registration. Nothing is
// written before the check passes.
func (s *RegistrationService) authorize(ctx context.Context, op policy.Operation, caller entities.SignedInUser, eventKey entities.EventKey, registrationKey entities.RegistrationKey) error {
	if caller.IsAnonymous() {
		return domain.ErrUnauthorized
	}
	event, err := s.store.FindByKey(ctx, eventKey)
	if err != nil {
		return err
	}
	reg, ok := event.Registration(registrationKey)
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	return policy.Check(op, caller, policy.Subject{RegistrationUser: reg.User})
}

// assertVisible hides events the caller must not see behind NotFound.
func (s *RegistrationService) assertVisible(ctx context.Context, caller entities.SignedInUser, eventKey entities.EventKey) error {
	event, err := s.store.FindByKey(ctx, eventKey)
	if err != nil {
		return err
	}
	if caller.HasPermission(domain.PermissionWriteRegistrations) {
		return nil
	}
	if _, ok := visibility.FilterForCaller(caller, event); !ok {
		return domain.ErrEventNotFound
	}
	return nil
}

func registrationIndex(event entities.Event, key entities.RegistrationKey) int {
	for i, r := range event.Registrations {
		if r.Key == key {
			return i
		}
	}
	return -1
}

// hasGuest reports whether a guest other than except already uses name.
func hasGuest(event entities.Event, name string, except entities.RegistrationKey) bool {
	for _, r := range event.Registrations {
		if r.IsGuest() && r.Key != except && strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return true
		}
	}
	return false
}
