package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
)

type fakeStore struct {
	mu        sync.Mutex
	events    map[entities.EventKey]entities.Event
	mutateErr map[entities.EventKey]error
	writes    int
}

func newFakeStore(events ...entities.Event) *fakeStore {
	s := &fakeStore{
		events:    make(map[entities.EventKey]entities.Event),
		mutateErr: make(map[entities.EventKey]error),
	}
	for _, e := range events {
		s.events[e.Key] = e.Clone()
	}
	return s
}

func (s *fakeStore) get(key entities.EventKey) entities.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[key].Clone()
}

func (s *fakeStore) FindByKey(_ context.Context, key entities.EventKey) (entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[key]
	if !ok {
		return entities.Event{}, domain.ErrEventNotFound
	}
	return e.Clone(), nil
}

func (s *fakeStore) FindAllByYear(_ context.Context, year int, loc *time.Location) ([]entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Event
	for _, e := range s.events {
		if e.Start.In(loc).Year() == year {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) FindPlannedEndingAfter(_ context.Context, now time.Time, sent int) ([]entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Event
	for _, e := range s.events {
		if e.State == entities.EventStatePlanned && e.End.After(now) && e.ConfirmationRequestsSent == sent {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, event entities.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Key] = event.Clone()
	s.writes++
	return nil
}

func (s *fakeStore) Update(_ context.Context, event entities.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.Key]; !ok {
		return domain.ErrEventNotFound
	}
	s.events[event.Key] = event.Clone()
	s.writes++
	return nil
}

func (s *fakeStore) DeleteByKey(_ context.Context, key entities.EventKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[key]; !ok {
		return domain.ErrEventNotFound
	}
	delete(s.events, key)
	return nil
}

func (s *fakeStore) Mutate(_ context.Context, key entities.EventKey, fn output.MutateFunc) (entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutateErr[key]; err != nil {
		return entities.Event{}, err
	}
	current, ok := s.events[key]
	if !ok {
		return entities.Event{}, domain.ErrEventNotFound
	}
	next, err := fn(current.Clone())
	if err != nil {
		return entities.Event{}, err
	}
	next.Key = key
	s.events[key] = next.Clone()
	s.writes++
	return next.Clone(), nil
}

type fakeSink struct {
	mu   sync.Mutex
	sent []entities.Notification
	err  error
}

func (s *fakeSink) Dispatch(_ context.Context, n entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *fakeSink) ofType(typ entities.NotificationType) []entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Notification
	for _, n := range s.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeDirectory map[entities.UserKey]entities.UserDetails

func (d fakeDirectory) FindByKey(_ context.Context, key entities.UserKey) (entities.UserDetails, bool, error) {
	if key == "broken" {
		return entities.UserDetails{}, false, errors.New("directory unavailable")
	}
	u, ok := d[key]
	return u, ok, nil
}

// keyTranslator renders the message key followed by the template data the
// caller asked for so tests can assert on both.
type keyTranslator struct{}

func (keyTranslator) T(_ string, key string, data map[string]any) string {
	if link, ok := data["ConfirmLink"].(string); ok {
		return key + " " + link
	}
	return key
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func users(keys ...entities.UserKey) fakeDirectory {
	d := make(fakeDirectory, len(keys))
	for _, k := range keys {
		d[k] = entities.UserDetails{Key: k, FirstName: string(k), DiscordID: "d-" + string(k)}
	}
	return d
}

type harness struct {
	store         *fakeStore
	sink          *fakeSink
	events        *EventService
	registrations *RegistrationService
	confirmations *ConfirmationService
}

func newHarness(now time.Time, dir fakeDirectory, events ...entities.Event) *harness {
	store := newFakeStore(events...)
	sink := &fakeSink{}
	clock := fixedClock(now)
	notifier := NewNotifier(dir, sink, keyTranslator{}, NotifierConfig{
		BaseURL: "https://crew.example.org/",
		Logger:  discardLogger(),
		Clock:   clock,
	})
	return &harness{
		store:         store,
		sink:          sink,
		events:        NewEventService(store, notifier, clock),
		registrations: NewRegistrationService(store, notifier, clock),
		confirmations: NewConfirmationService(store, notifier, clock, discardLogger()),
	}
}
