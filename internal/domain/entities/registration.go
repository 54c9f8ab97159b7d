package entities

import "time"

// Registration is a user's or guest's sign-up for an event. It is crew when a
// slot of the same event references its key, waiting list otherwise.
type Registration struct {
	Key         RegistrationKey
	Position    PositionKey
	User        UserKey // empty for guests
	Name        string  // guests only
	Note        string
	AccessKey   string // empty for legacy rows
	ConfirmedAt *time.Time
}

func (r Registration) IsGuest() bool {
	return r.User == ""
}

func (r Registration) IsConfirmed() bool {
	return r.ConfirmedAt != nil
}

func (r Registration) clone() Registration {
	out := r
	if r.ConfirmedAt != nil {
		t := *r.ConfirmedAt
		out.ConfirmedAt = &t
	}
	return out
}
