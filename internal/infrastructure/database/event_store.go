package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
)

var _ output.EventStore = (*EventStore)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const selectEvents = `
SELECT key, name, state, note, description, start_at, end_at, locations, slots, confirmation_requests_sent
FROM events`

const selectRegistrations = `
SELECT event_key, key, position, user_key, name, note, access_key, confirmed_at
FROM registrations`

// EventStore implements output.EventStore on PostgreSQL. Slots and locations
// live in JSONB columns of the events row, registrations in their own table.
type EventStore struct {
	pool *pgxpool.Pool
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

func (s *EventStore) FindByKey(ctx context.Context, key entities.EventKey) (entities.Event, error) {
	return findEvent(ctx, s.pool, key, "")
}

func (s *EventStore) FindAllByYear(ctx context.Context, year int, loc *time.Location) ([]entities.Event, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)
	events, err := findEvents(ctx, s.pool,
		selectEvents+` WHERE start_at >= $1 AND start_at < $2 ORDER BY start_at, key`, from, to)
	if err != nil {
		return nil, fmt.Errorf("find events by year: %w", err)
	}
	return events, nil
}

func (s *EventStore) FindPlannedEndingAfter(ctx context.Context, now time.Time, sent int) ([]entities.Event, error) {
	events, err := findEvents(ctx, s.pool,
		selectEvents+` WHERE state = $1 AND end_at > $2 AND confirmation_requests_sent = $3 ORDER BY start_at, key`,
		string(entities.EventStatePlanned), now, sent)
	if err != nil {
		return nil, fmt.Errorf("find planned events: %w", err)
	}
	return events, nil
}

func (s *EventStore) Create(ctx context.Context, event entities.Event) error {
	locations, slots, err := EncodeJSONColumns(event)
	if err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO events (key, name, state, note, description, start_at, end_at, locations, slots, confirmation_requests_sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(event.Key), event.Name, string(event.State), event.Note, event.Description,
		timeToPgtypeTimestamptz(event.Start), timeToPgtypeTimestamptz(event.End),
		locations, slots, event.ConfirmationRequestsSent,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if err := replaceRegistrations(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *EventStore) Update(ctx context.Context, event entities.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := writeEvent(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *EventStore) DeleteByKey(ctx context.Context, key entities.EventKey) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE key = $1`, string(key))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Mutate locks the event row with SELECT ... FOR UPDATE so concurrent
// mutations of one event are serialized until this transaction ends.
func (s *EventStore) Mutate(ctx context.Context, key entities.EventKey, fn output.MutateFunc) (entities.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return entities.Event{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := findEvent(ctx, tx, key, " FOR UPDATE")
	if err != nil {
		return entities.Event{}, err
	}
	next, err := fn(current.Clone())
	if err != nil {
		return entities.Event{}, err
	}
	next.Key = key
	if err := writeEvent(ctx, tx, next); err != nil {
		return entities.Event{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return entities.Event{}, fmt.Errorf("commit transaction: %w", err)
	}
	return next, nil
}

func findEvent(ctx context.Context, q querier, key entities.EventKey, lock string) (entities.Event, error) {
	var row eventRow
	err := q.QueryRow(ctx, selectEvents+` WHERE key = $1`+lock, string(key)).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Event{}, domain.ErrEventNotFound
	}
	if err != nil {
		return entities.Event{}, fmt.Errorf("get event by key: %w", err)
	}
	event, err := eventToDomain(row)
	if err != nil {
		return entities.Event{}, err
	}
	regs, err := loadRegistrations(ctx, q, []string{row.key})
	if err != nil {
		return entities.Event{}, err
	}
	event.Registrations = regs[row.key]
	return event, nil
}

func findEvents(ctx context.Context, q querier, sql string, args ...any) ([]entities.Event, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var (
		events []entities.Event
		keys   []string
	)
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(row.dest()...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event, err := eventToDomain(row)
		if err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, event)
		keys = append(keys, row.key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	regs, err := loadRegistrations(ctx, q, keys)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Registrations = regs[string(events[i].Key)]
	}
	return events, nil
}

func loadRegistrations(ctx context.Context, q querier, eventKeys []string) (map[string][]entities.Registration, error) {
	rows, err := q.Query(ctx, selectRegistrations+` WHERE event_key = ANY($1) ORDER BY event_key, ordinal`, eventKeys)
	if err != nil {
		return nil, fmt.Errorf("get registrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entities.Registration, len(eventKeys))
	for rows.Next() {
		var row registrationRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out[row.eventKey] = append(out[row.eventKey], registrationToDomain(row))
	}
	return out, rows.Err()
}

// writeEvent overwrites the stored event and its registrations.
func writeEvent(ctx context.Context, q querier, event entities.Event) error {
	locations, slots, err := EncodeJSONColumns(event)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
UPDATE events
SET name = $2, state = $3, note = $4, description = $5, start_at = $6, end_at = $7,
    locations = $8, slots = $9, confirmation_requests_sent = $10, updated_at = now()
WHERE key = $1`,
		string(event.Key), event.Name, string(event.State), event.Note, event.Description,
		timeToPgtypeTimestamptz(event.Start), timeToPgtypeTimestamptz(event.End),
		locations, slots, event.ConfirmationRequestsSent,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return replaceRegistrations(ctx, q, event)
}

func replaceRegistrations(ctx context.Context, q querier, event entities.Event) error {
	if _, err := q.Exec(ctx, `DELETE FROM registrations WHERE event_key = $1`, string(event.Key)); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}
	if len(event.Registrations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, r := range event.Registrations {
		batch.Queue(`
INSERT INTO registrations (key, event_key, ordinal, position, user_key, name, note, access_key, confirmed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(r.Key), string(event.Key), i, string(r.Position),
			textOrNull(string(r.User)), textOrNull(r.Name), textOrNull(r.Note), textOrNull(r.AccessKey),
			confirmedAtParam(r.ConfirmedAt),
		)
	}
	results := q.SendBatch(ctx, batch)
	for range event.Registrations {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert registration: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert registrations: %w", err)
	}
	return nil
}

func confirmedAtParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
