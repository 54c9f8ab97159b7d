package application

import (
	"context"
	"fmt"
	"strings"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/crew"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/domain/policy"
	"eventplanner/internal/domain/visibility"
	"eventplanner/internal/ports/input"
	"eventplanner/internal/ports/output"
	"eventplanner/pkg/tz"
)

// yearRange bounds how far listing may look into the past or the future.
const yearRange = 10

var _ input.EventUseCase = (*EventService)(nil)

type EventService struct {
	store    output.EventStore
	notifier *Notifier
	clock    Clock
}

func NewEventService(store output.EventStore, notifier *Notifier, clock Clock) *EventService {
	return &EventService{
		store:    store,
		notifier: notifier,
		clock:    clock,
	}
}

func (s *EventService) GetByKey(ctx context.Context, caller entities.SignedInUser, key entities.EventKey) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.GetByKey", key)
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.ReadEvents, caller, policy.Subject{}); err != nil {
		return entities.Event{}, err
	}
	event, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return entities.Event{}, err
	}
	out, ok := visibility.FilterForCaller(caller, event)
	if !ok {
		return entities.Event{}, domain.ErrEventNotFound
	}
	return out, nil
}

func (s *EventService) ListByYear(ctx context.Context, caller entities.SignedInUser, year int) (_ []entities.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.ListByYear", "")
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.ReadEvents, caller, policy.Subject{}); err != nil {
		return nil, err
	}
	current := s.clock.now().In(tz.Berlin).Year()
	if year < current-yearRange || year > current+yearRange {
		return nil, domain.ErrInvalidYear
	}
	events, err := s.store.FindAllByYear(ctx, year, tz.Berlin)
	if err != nil {
		return nil, err
	}
	return visibility.FilterAll(caller, events), nil
}

func (s *EventService) Create(ctx context.Context, caller entities.SignedInUser, spec input.CreateEventSpec) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.Create", "")
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.CreateEvent, caller, policy.Subject{}); err != nil {
		return entities.Event{}, err
	}
	if len(spec.Slots) > 0 {
		if err := policy.Check(policy.SetSlots, caller, policy.Subject{}); err != nil {
			return entities.Event{}, err
		}
	}

	event := entities.Event{
		Key:         entities.NewEventKey(),
		Name:        strings.TrimSpace(spec.Name),
		State:       entities.EventStateDraft,
		Note:        spec.Note,
		Description: spec.Description,
		Start:       spec.Start,
		End:         spec.End,
		Locations:   append([]entities.Location(nil), spec.Locations...),
		Slots:       assignSlotKeys(spec.Slots),
	}
	if err := validateDetails(event); err != nil {
		return entities.Event{}, err
	}
	event = consistent(event)

	if err := s.store.Create(ctx, event); err != nil {
		return entities.Event{}, fmt.Errorf("create event: %w", err)
	}
	return view(caller, event), nil
}

func (s *EventService) UpdateDetails(ctx context.Context, caller entities.SignedInUser, key entities.EventKey, spec input.UpdateEventSpec) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.UpdateDetails", key)
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.UpdateEventDetails, caller, policy.Subject{}); err != nil {
		return entities.Event{}, err
	}
	if spec.Slots != nil {
		if err := policy.Check(policy.SetSlots, caller, policy.Subject{}); err != nil {
			return entities.Event{}, err
		}
		if err := crew.ValidateAssignments(*spec.Slots); err != nil {
			return entities.Event{}, err
		}
	}
	if spec.State != nil && !spec.State.Valid() {
		return entities.Event{}, domain.ErrInvalidEventState
	}

	var before entities.Event
	after, err := s.store.Mutate(ctx, key, func(current entities.Event) (entities.Event, error) {
		before = current
		next := applyDetails(current, spec)
		if err := validateDetails(next); err != nil {
			return entities.Event{}, err
		}
		return consistent(next), nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	s.announce(ctx, before, after)
	return view(caller, after), nil
}

func (s *EventService) SetSlots(ctx context.Context, caller entities.SignedInUser, key entities.EventKey, slots []entities.Slot) (_ entities.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.SetSlots", key)
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.SetSlots, caller, policy.Subject{}); err != nil {
		return entities.Event{}, err
	}
	if err := crew.ValidateAssignments(slots); err != nil {
		return entities.Event{}, err
	}

	var before entities.Event
	after, err := s.store.Mutate(ctx, key, func(current entities.Event) (entities.Event, error) {
		before = current
		next := current.Clone()
		next.Slots = assignSlotKeys(slots)
		return consistent(next), nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	s.announce(ctx, before, after)
	return view(caller, after), nil
}

func (s *EventService) Delete(ctx context.Context, caller entities.SignedInUser, key entities.EventKey) (err error) {
	ctx, span := startSpan(ctx, "EventService.Delete", key)
	defer func() { endSpan(span, err) }()

	if err := policy.Check(policy.DeleteEvent, caller, policy.Subject{}); err != nil {
		return err
	}
	return s.store.DeleteByKey(ctx, key)
}

// announce notifies about a cancellation or about crew changes after a
// committed event update.
func (s *EventService) announce(ctx context.Context, before, after entities.Event) {
	now := s.clock.now()
	if after.State == entities.EventStateCanceled && before.State != entities.EventStateCanceled {
		if !after.StartsAfter(now) {
			return
		}
		for _, reg := range after.Registrations {
			s.notifier.toRegistrant(ctx, entities.NotificationEventCanceled, after, reg, nil)
		}
		return
	}
	if !announcesCrew(after, now) {
		return
	}
	s.notifier.crewChanges(ctx, before, after, crewDiff(before, after))
}

func applyDetails(current entities.Event, spec input.UpdateEventSpec) entities.Event {
	next := current.Clone()
	if spec.Name != nil {
		next.Name = strings.TrimSpace(*spec.Name)
	}
	if spec.State != nil {
		next.State = *spec.State
	}
	if spec.Note != nil {
		next.Note = *spec.Note
	}
	if spec.Description != nil {
		next.Description = *spec.Description
	}
	if spec.Start != nil {
		next.Start = *spec.Start
	}
	if spec.End != nil {
		next.End = *spec.End
	}
	if spec.Locations != nil {
		next.Locations = append([]entities.Location(nil), (*spec.Locations)...)
	}
	if spec.Slots != nil {
		next.Slots = assignSlotKeys(*spec.Slots)
	}
	return next
}

func validateDetails(event entities.Event) error {
	if event.Name == "" {
		return domain.ErrEventNameRequired
	}
	if !event.Start.IsZero() && !event.End.IsZero() && event.End.Before(event.Start) {
		return domain.ErrEventEndBeforeStart
	}
	return nil
}
