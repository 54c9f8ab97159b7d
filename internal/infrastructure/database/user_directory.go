package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
)

var _ output.UserDirectory = (*UserDirectory)(nil)

type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) FindByKey(ctx context.Context, key entities.UserKey) (entities.UserDetails, bool, error) {
	var k, first, nick, last, email, discordID, locale string
	err := d.pool.QueryRow(ctx, `
SELECT key, first_name, nickname, last_name, email, discord_id, locale
FROM users
WHERE key = $1`, string(key)).Scan(&k, &first, &nick, &last, &email, &discordID, &locale)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.UserDetails{}, false, nil
	}
	if err != nil {
		return entities.UserDetails{}, false, fmt.Errorf("get user by key: %w", err)
	}
	return userToDomain(k, first, nick, last, email, discordID, locale), true, nil
}

// Save inserts or replaces a user synchronized from the identity provider.
func (d *UserDirectory) Save(ctx context.Context, user entities.UserDetails) error {
	_, err := d.pool.Exec(ctx, `
INSERT INTO users (key, first_name, nickname, last_name, email, discord_id, locale)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (key) DO UPDATE
SET first_name = EXCLUDED.first_name, nickname = EXCLUDED.nickname, last_name = EXCLUDED.last_name,
    email = EXCLUDED.email, discord_id = EXCLUDED.discord_id, locale = EXCLUDED.locale`,
		string(user.Key), user.FirstName, user.Nickname, user.LastName, user.Email, user.DiscordID, user.Locale,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
