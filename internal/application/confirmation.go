package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/input"
	"eventplanner/internal/ports/output"
)

var _ input.ConfirmationUseCase = (*ConfirmationService)(nil)

// round is one periodic pass of confirmation messages.
type round struct {
	sent   int
	window time.Duration
	typ    entities.NotificationType
}

var (
	requestRound  = round{sent: 0, window: 14 * 24 * time.Hour, typ: entities.NotificationConfirmationRequest}
	reminderRound = round{sent: 1, window: 7 * 24 * time.Hour, typ: entities.NotificationConfirmationReminder}
)

// due reports whether event is ready for this round at now.
func (r round) due(event entities.Event, now time.Time) bool {
	return event.State == entities.EventStatePlanned &&
		event.ConfirmationRequestsSent == r.sent &&
		event.End.After(now) &&
		event.StartsAfter(now) &&
		event.Start.Sub(now) <= r.window
}

type ConfirmationService struct {
	store    output.EventStore
	notifier *Notifier
	clock    Clock
	logger   *slog.Logger
}

func NewConfirmationService(store output.EventStore, notifier *Notifier, clock Clock, logger *slog.Logger) *ConfirmationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmationService{
		store:    store,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// ConfirmRegistration records the participation of a registration holder.
// Confirming twice keeps the first timestamp.
func (s *ConfirmationService) ConfirmRegistration(ctx context.Context, eventKey entities.EventKey, registrationKey entities.RegistrationKey, accessKey string) (err error) {
	ctx, span := startSpan(ctx, "ConfirmationService.ConfirmRegistration", eventKey)
	defer func() { endSpan(span, err) }()

	now := s.clock.now()
	_, err = s.store.Mutate(ctx, eventKey, func(current entities.Event) (entities.Event, error) {
		reg, err := authenticate(current, registrationKey, accessKey)
		if err != nil {
			return entities.Event{}, err
		}
		if reg.IsConfirmed() {
			return entities.Event{}, errUnchanged
		}
		next := current.Clone()
		i := registrationIndex(next, registrationKey)
		confirmedAt := now
		next.Registrations[i].ConfirmedAt = &confirmedAt
		return next, nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// DeclineRegistration removes an unconfirmed registration on behalf of its
// holder and tells the admins why.
func (s *ConfirmationService) DeclineRegistration(ctx context.Context, eventKey entities.EventKey, registrationKey entities.RegistrationKey, accessKey, reason string) (err error) {
	ctx, span := startSpan(ctx, "ConfirmationService.DeclineRegistration", eventKey)
	defer func() { endSpan(span, err) }()

	var (
		declined entities.Registration
		wasCrew  bool
	)
	after, err := s.store.Mutate(ctx, eventKey, func(current entities.Event) (entities.Event, error) {
		reg, err := authenticate(current, registrationKey, accessKey)
		if err != nil {
			return entities.Event{}, err
		}
		if reg.IsConfirmed() {
			return entities.Event{}, domain.ErrAlreadyConfirmed
		}
		// Crew is only announced once the event is planned.
		declined = reg
		wasCrew = current.State == entities.EventStatePlanned && current.IsAssigned(reg.Key)
		return consistent(current.WithoutRegistration(reg.Key)), nil
	})
	if err != nil {
		return err
	}

	typ := entities.NotificationRemovedFromWaitingList
	if wasCrew {
		typ = entities.NotificationRemovedFromCrew
	}
	s.notifier.toRegistrant(ctx, typ, after, declined, nil)
	s.notifier.toRole(ctx, entities.NotificationRegistrationDeclined, domain.RoleAdmin, after, declined, map[string]any{
		"Reason": reason,
	})
	return nil
}

// SendConfirmationRequests asks the crew of events starting within two weeks
// to confirm their participation.
func (s *ConfirmationService) SendConfirmationRequests(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "ConfirmationService.SendConfirmationRequests", "")
	defer func() { endSpan(span, err) }()
	return s.run(ctx, requestRound)
}

// SendConfirmationReminders reminds crew that did not confirm within one week
// of the start.
func (s *ConfirmationService) SendConfirmationReminders(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "ConfirmationService.SendConfirmationReminders", "")
	defer func() { endSpan(span, err) }()
	return s.run(ctx, reminderRound)
}

// run processes every due event of r. A failing event is logged and the
// remaining ones are still processed; all failures are returned joined.
func (s *ConfirmationService) run(ctx context.Context, r round) error {
	now := s.clock.now()
	candidates, err := s.store.FindPlannedEndingAfter(ctx, now, r.sent)
	if err != nil {
		return fmt.Errorf("find confirmation candidates: %w", err)
	}

	var errs []error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !r.due(candidate, now) {
			continue
		}
		if err := s.send(ctx, r, candidate.Key, now); err != nil {
			s.logger.Error("confirmation round failed",
				"round", r.typ, "event", candidate.Key, "error", err)
			errs = append(errs, fmt.Errorf("event %s: %w", candidate.Key, err))
		}
	}
	return errors.Join(errs...)
}

// send advances the round counter of one event and messages its unconfirmed
// crew. Access keys missing on legacy registrations are generated first.
func (s *ConfirmationService) send(ctx context.Context, r round, key entities.EventKey, now time.Time) error {
	after, err := s.store.Mutate(ctx, key, func(current entities.Event) (entities.Event, error) {
		if !r.due(current, now) {
			return entities.Event{}, errUnchanged
		}
		next := current.Clone()
		for i := range next.Registrations {
			if next.Registrations[i].AccessKey == "" && next.IsAssigned(next.Registrations[i].Key) {
				next.Registrations[i].AccessKey = entities.NewAccessKey()
			}
		}
		next.ConfirmationRequestsSent = r.sent + 1
		return next, nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, reg := range after.Registrations {
		if !after.IsAssigned(reg.Key) || reg.IsConfirmed() {
			continue
		}
		s.notifier.toRegistrant(ctx, r.typ, after, reg, map[string]any{
			"ConfirmLink": s.notifier.ActionLink(after, reg, "confirm"),
			"DeclineLink": s.notifier.ActionLink(after, reg, "decline"),
		})
	}
	s.logger.Info("confirmation round sent", "round", r.typ, "event", key)
	return nil
}

// authenticate finds the registration and checks the access key in constant
// time. A registration without a stored key never matches.
func authenticate(event entities.Event, key entities.RegistrationKey, accessKey string) (entities.Registration, error) {
	reg, ok := event.Registration(key)
	if !ok {
		return entities.Registration{}, domain.ErrRegistrationNotFound
	}
	if reg.AccessKey == "" || subtle.ConstantTimeCompare([]byte(reg.AccessKey), []byte(accessKey)) != 1 {
		return entities.Registration{}, domain.ErrInvalidAccessKey
	}
	return reg, nil
}
