package database

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"eventplanner/internal/domain/entities"
)

func TestEncodeJSONColumns_EmptyListsAreArrays(t *testing.T) {
	locations, slots, err := EncodeJSONColumns(entities.Event{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(locations) != "[]" || string(slots) != "[]" {
		t.Fatalf("locations=%s slots=%s, want [] and []", locations, slots)
	}
}

func TestDecodeJSONColumns_SlotWireFormat(t *testing.T) {
	var e entities.Event
	slots := []byte(`[{"key":"s1","order":2,"criticality":1,"positions":["skipper","mate"],"assignedRegistrationKey":"r1"}]`)
	if err := DecodeJSONColumns(nil, slots, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(e.Slots) != 1 {
		t.Fatalf("slots = %+v", e.Slots)
	}
	s := e.Slots[0]
	if s.Key != "s1" || s.Order != 2 || s.Criticality != entities.CriticalityRequired || s.AssignedRegistration != "r1" || !s.Accepts("mate") {
		t.Fatalf("unexpected slot: %+v", s)
	}
}

func TestEventToDomain(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	got, err := eventToDomain(eventRow{
		key:       "e1",
		name:      "Törn",
		state:     "OPEN_FOR_SIGNUP",
		start:     pgtype.Timestamptz{Time: start, Valid: true},
		locations: []byte(`[{"name":"Kiel"}]`),
		slots:     []byte(`[]`),
		sent:      2,
	})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if got.State != entities.EventStateOpenForSignup || !got.Start.Equal(start) || !got.End.IsZero() || got.ConfirmationRequestsSent != 2 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if len(got.Locations) != 1 || got.Locations[0].Name != "Kiel" {
		t.Fatalf("locations = %+v", got.Locations)
	}

	if _, err := eventToDomain(eventRow{key: "bad", slots: []byte(`{`)}); err == nil {
		t.Fatal("expected error for malformed slots")
	}
}

func TestRegistrationToDomain_NullColumns(t *testing.T) {
	confirmed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	legacy := registrationToDomain(registrationRow{key: "r1", position: "deckhand", name: pgtype.Text{String: "Gast", Valid: true}})
	if !legacy.IsGuest() || legacy.AccessKey != "" || legacy.IsConfirmed() {
		t.Fatalf("unexpected legacy registration: %+v", legacy)
	}
	user := registrationToDomain(registrationRow{
		key:         "r2",
		position:    "skipper",
		user:        pgtype.Text{String: "u1", Valid: true},
		accessKey:   pgtype.Text{String: "ak", Valid: true},
		confirmedAt: pgtype.Timestamptz{Time: confirmed, Valid: true},
	})
	if user.User != "u1" || user.AccessKey != "ak" || user.ConfirmedAt == nil || !user.ConfirmedAt.Equal(confirmed) {
		t.Fatalf("unexpected registration: %+v", user)
	}
}
