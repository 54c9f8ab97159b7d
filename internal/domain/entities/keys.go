package entities

import "github.com/google/uuid"

type (
	EventKey        string
	SlotKey         string
	RegistrationKey string
	PositionKey     string
	UserKey         string
)

func NewEventKey() EventKey { return EventKey(uuid.NewString()) }

func NewSlotKey() SlotKey { return SlotKey(uuid.NewString()) }

func NewRegistrationKey() RegistrationKey { return RegistrationKey(uuid.NewString()) }

// NewAccessKey returns a random opaque token for access-key links.
func NewAccessKey() string { return uuid.NewString() }
