package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"eventplanner/internal/domain/entities"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func timeToPgtypeTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// EncodeJSONColumns renders the locations and slots columns of an events row.
func EncodeJSONColumns(e entities.Event) (locations, slots []byte, err error) {
	locs := e.Locations
	if locs == nil {
		locs = []entities.Location{}
	}
	if locations, err = json.Marshal(locs); err != nil {
		return nil, nil, fmt.Errorf("encode locations: %w", err)
	}
	ss := e.Slots
	if ss == nil {
		ss = []entities.Slot{}
	}
	if slots, err = json.Marshal(ss); err != nil {
		return nil, nil, fmt.Errorf("encode slots: %w", err)
	}
	return locations, slots, nil
}

// DecodeJSONColumns fills the locations and slots of e from their columns.
func DecodeJSONColumns(locations, slots []byte, e *entities.Event) error {
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &e.Locations); err != nil {
			return fmt.Errorf("decode locations: %w", err)
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &e.Slots); err != nil {
			return fmt.Errorf("decode slots: %w", err)
		}
	}
	return nil
}

type eventRow struct {
	key         string
	name        string
	state       string
	note        string
	description string
	start       pgtype.Timestamptz
	end         pgtype.Timestamptz
	locations   []byte
	slots       []byte
	sent        int32
}

func (r *eventRow) dest() []any {
	return []any{&r.key, &r.name, &r.state, &r.note, &r.description, &r.start, &r.end, &r.locations, &r.slots, &r.sent}
}

func eventToDomain(r eventRow) (entities.Event, error) {
	e := entities.Event{
		Key:                      entities.EventKey(r.key),
		Name:                     r.name,
		State:                    entities.EventState(r.state),
		Note:                     r.note,
		Description:              r.description,
		Start:                    pgtypeTimestamptzToTime(r.start),
		End:                      pgtypeTimestamptzToTime(r.end),
		ConfirmationRequestsSent: int(r.sent),
	}
	if err := DecodeJSONColumns(r.locations, r.slots, &e); err != nil {
		return entities.Event{}, fmt.Errorf("event %s: %w", r.key, err)
	}
	return e, nil
}

type registrationRow struct {
	eventKey    string
	key         string
	position    string
	user        pgtype.Text
	name        pgtype.Text
	note        pgtype.Text
	accessKey   pgtype.Text
	confirmedAt pgtype.Timestamptz
}

func (r *registrationRow) dest() []any {
	return []any{&r.eventKey, &r.key, &r.position, &r.user, &r.name, &r.note, &r.accessKey, &r.confirmedAt}
}

func registrationToDomain(r registrationRow) entities.Registration {
	reg := entities.Registration{
		Key:       entities.RegistrationKey(r.key),
		Position:  entities.PositionKey(r.position),
		User:      entities.UserKey(r.user.String),
		Name:      r.name.String,
		Note:      r.note.String,
		AccessKey: r.accessKey.String,
	}
	if r.confirmedAt.Valid {
		t := r.confirmedAt.Time
		reg.ConfirmedAt = &t
	}
	return reg
}

func userToDomain(key, first, nick, last, email, discordID, locale string) entities.UserDetails {
	return entities.UserDetails{
		Key:       entities.UserKey(key),
		FirstName: first,
		Nickname:  nick,
		LastName:  last,
		Email:     email,
		DiscordID: discordID,
		Locale:    locale,
	}
}
