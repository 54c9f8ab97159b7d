// Package sqlite stores events and users in a single SQLite file for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/infrastructure/database"
	"eventplanner/internal/infrastructure/database/migrations"
	"eventplanner/internal/ports/output"
)

var _ output.EventStore = (*Store)(nil)

// Store implements output.EventStore.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// applyMigrations runs the embedded sqlite migrations on db. The migrate
// instance is not closed since that would close db.
func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectEvents = `
SELECT key, name, state, note, description, start_at, end_at, locations, slots, confirmation_requests_sent
FROM events`

func (s *Store) FindByKey(ctx context.Context, key entities.EventKey) (entities.Event, error) {
	return findEvent(ctx, s.sqlDB, key)
}

func (s *Store) FindAllByYear(ctx context.Context, year int, loc *time.Location) ([]entities.Event, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)
	events, err := findEvents(ctx, s.sqlDB,
		selectEvents+` WHERE start_at >= ? AND start_at < ? ORDER BY start_at, key`,
		toMillis(from), toMillis(to))
	if err != nil {
		return nil, fmt.Errorf("find events by year: %w", err)
	}
	return events, nil
}

func (s *Store) FindPlannedEndingAfter(ctx context.Context, now time.Time, sent int) ([]entities.Event, error) {
	events, err := findEvents(ctx, s.sqlDB,
		selectEvents+` WHERE state = ? AND end_at > ? AND confirmation_requests_sent = ? ORDER BY start_at, key`,
		string(entities.EventStatePlanned), toMillis(now), sent)
	if err != nil {
		return nil, fmt.Errorf("find planned events: %w", err)
	}
	return events, nil
}

func (s *Store) Create(ctx context.Context, event entities.Event) error {
	locations, slots, err := database.EncodeJSONColumns(event)
	if err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toMillis(s.now())
	_, err = tx.ExecContext(ctx, `
INSERT INTO events (key, name, state, note, description, start_at, end_at, locations, slots,
                    confirmation_requests_sent, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(event.Key), event.Name, string(event.State), event.Note, event.Description,
		nullMillis(event.Start), nullMillis(event.End), string(locations), string(slots),
		event.ConfirmationRequestsSent, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if err := replaceRegistrations(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, event entities.Event) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.writeEvent(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteByKey(ctx context.Context, key entities.EventKey) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM events WHERE key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Mutate runs fn inside an immediate transaction, which takes the database
// write lock up front and serializes concurrent mutations.
func (s *Store) Mutate(ctx context.Context, key entities.EventKey, fn output.MutateFunc) (entities.Event, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return entities.Event{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := findEvent(ctx, tx, key)
	if err != nil {
		return entities.Event{}, err
	}
	next, err := fn(current.Clone())
	if err != nil {
		return entities.Event{}, err
	}
	next.Key = key
	if err := s.writeEvent(ctx, tx, next); err != nil {
		return entities.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return entities.Event{}, fmt.Errorf("commit transaction: %w", err)
	}
	return next, nil
}

func (s *Store) writeEvent(ctx context.Context, q queryer, event entities.Event) error {
	locations, slots, err := database.EncodeJSONColumns(event)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
UPDATE events
SET name = ?, state = ?, note = ?, description = ?, start_at = ?, end_at = ?,
    locations = ?, slots = ?, confirmation_requests_sent = ?, updated_at = ?
WHERE key = ?`,
		event.Name, string(event.State), event.Note, event.Description,
		nullMillis(event.Start), nullMillis(event.End), string(locations), string(slots),
		event.ConfirmationRequestsSent, toMillis(s.now()), string(event.Key),
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrEventNotFound
	}
	return replaceRegistrations(ctx, q, event)
}

func findEvent(ctx context.Context, q queryer, key entities.EventKey) (entities.Event, error) {
	event, err := scanEvent(q.QueryRowContext(ctx, selectEvents+` WHERE key = ?`, string(key)))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Event{}, domain.ErrEventNotFound
	}
	if err != nil {
		return entities.Event{}, fmt.Errorf("get event by key: %w", err)
	}
	regs, err := loadRegistrations(ctx, q, string(key))
	if err != nil {
		return entities.Event{}, err
	}
	event.Registrations = regs
	return event, nil
}

func findEvents(ctx context.Context, q queryer, query string, args ...any) ([]entities.Event, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var events []entities.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		regs, err := loadRegistrations(ctx, q, string(events[i].Key))
		if err != nil {
			return nil, err
		}
		events[i].Registrations = regs
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (entities.Event, error) {
	var (
		key, name, state, note, description string
		start, end                          sql.NullInt64
		locations, slots                    string
		sent                                int
	)
	if err := row.Scan(&key, &name, &state, &note, &description, &start, &end, &locations, &slots, &sent); err != nil {
		return entities.Event{}, err
	}
	event := entities.Event{
		Key:                      entities.EventKey(key),
		Name:                     name,
		State:                    entities.EventState(state),
		Note:                     note,
		Description:              description,
		Start:                    fromNullMillis(start),
		End:                      fromNullMillis(end),
		ConfirmationRequestsSent: sent,
	}
	if err := database.DecodeJSONColumns([]byte(locations), []byte(slots), &event); err != nil {
		return entities.Event{}, fmt.Errorf("event %s: %w", key, err)
	}
	return event, nil
}

func loadRegistrations(ctx context.Context, q queryer, eventKey string) ([]entities.Registration, error) {
	rows, err := q.QueryContext(ctx, `
SELECT key, position, user_key, name, note, access_key, confirmed_at
FROM registrations
WHERE event_key = ?
ORDER BY ordinal`, eventKey)
	if err != nil {
		return nil, fmt.Errorf("get registrations: %w", err)
	}
	defer rows.Close()

	var out []entities.Registration
	for rows.Next() {
		var (
			key, position               string
			user, name, note, accessKey sql.NullString
			confirmedAt                 sql.NullInt64
		)
		if err := rows.Scan(&key, &position, &user, &name, &note, &accessKey, &confirmedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg := entities.Registration{
			Key:       entities.RegistrationKey(key),
			Position:  entities.PositionKey(position),
			User:      entities.UserKey(user.String),
			Name:      name.String,
			Note:      note.String,
			AccessKey: accessKey.String,
		}
		if confirmedAt.Valid {
			t := fromMillis(confirmedAt.Int64)
			reg.ConfirmedAt = &t
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func replaceRegistrations(ctx context.Context, q queryer, event entities.Event) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM registrations WHERE event_key = ?`, string(event.Key)); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}
	for i, r := range event.Registrations {
		var confirmedAt sql.NullInt64
		if r.ConfirmedAt != nil {
			confirmedAt = sql.NullInt64{Int64: toMillis(*r.ConfirmedAt), Valid: true}
		}
		_, err := q.ExecContext(ctx, `
INSERT INTO registrations (key, event_key, ordinal, position, user_key, name, note, access_key, confirmed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(r.Key), string(event.Key), i, string(r.Position),
			nullString(string(r.User)), nullString(r.Name), nullString(r.Note), nullString(r.AccessKey),
			confirmedAt,
		)
		if err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}

func fromNullMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return fromMillis(v.Int64)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
