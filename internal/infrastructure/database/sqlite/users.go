package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
)

var _ output.UserDirectory = (*UserDirectory)(nil)

// UserDirectory reads users from the same database as the Store it came from.
type UserDirectory struct {
	sqlDB *sql.DB
}

// Users returns the user directory sharing this store's connection.
func (s *Store) Users() *UserDirectory {
	return &UserDirectory{sqlDB: s.sqlDB}
}

func (d *UserDirectory) FindByKey(ctx context.Context, key entities.UserKey) (entities.UserDetails, bool, error) {
	var (
		u entities.UserDetails
		k string
	)
	err := d.sqlDB.QueryRowContext(ctx, `
SELECT key, first_name, nickname, last_name, email, discord_id, locale
FROM users
WHERE key = ?`, string(key)).Scan(&k, &u.FirstName, &u.Nickname, &u.LastName, &u.Email, &u.DiscordID, &u.Locale)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.UserDetails{}, false, nil
	}
	if err != nil {
		return entities.UserDetails{}, false, fmt.Errorf("get user by key: %w", err)
	}
	u.Key = entities.UserKey(k)
	return u, true, nil
}

// Save inserts or replaces a user synchronized from the identity provider.
func (d *UserDirectory) Save(ctx context.Context, user entities.UserDetails) error {
	_, err := d.sqlDB.ExecContext(ctx, `
INSERT INTO users (key, first_name, nickname, last_name, email, discord_id, locale)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE
SET first_name = excluded.first_name, nickname = excluded.nickname, last_name = excluded.last_name,
    email = excluded.email, discord_id = excluded.discord_id, locale = excluded.locale`,
		string(user.Key), user.FirstName, user.Nickname, user.LastName, user.Email, user.DiscordID, user.Locale,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
