package httpapi

import (
	"time"

	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/input"
)

type eventResponse struct {
	Key           entities.EventKey      `json:"key"`
	Name          string                 `json:"name"`
	State         entities.EventState    `json:"state"`
	Note          string                 `json:"note,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Start         *time.Time             `json:"start,omitempty"`
	End           *time.Time             `json:"end,omitempty"`
	Locations     []entities.Location    `json:"locations"`
	Slots         []entities.Slot        `json:"slots"`
	Registrations []registrationResponse `json:"registrations"`
}

type registrationResponse struct {
	Key         entities.RegistrationKey `json:"key"`
	Position    entities.PositionKey     `json:"position"`
	UserKey     entities.UserKey         `json:"userKey,omitempty"`
	Name        string                   `json:"name,omitempty"`
	Note        string                   `json:"note,omitempty"`
	AccessKey   string                   `json:"accessKey,omitempty"`
	Confirmed   bool                     `json:"confirmed"`
	ConfirmedAt *time.Time               `json:"confirmedAt,omitempty"`
}

func toEventResponse(e entities.Event) eventResponse {
	out := eventResponse{
		Key:           e.Key,
		Name:          e.Name,
		State:         e.State,
		Note:          e.Note,
		Description:   e.Description,
		Start:         optionalTime(e.Start),
		End:           optionalTime(e.End),
		Locations:     e.Locations,
		Slots:         e.Slots,
		Registrations: make([]registrationResponse, 0, len(e.Registrations)),
	}
	if out.Locations == nil {
		out.Locations = []entities.Location{}
	}
	if out.Slots == nil {
		out.Slots = []entities.Slot{}
	}
	for _, r := range e.Registrations {
		out.Registrations = append(out.Registrations, registrationResponse{
			Key:         r.Key,
			Position:    r.Position,
			UserKey:     r.User,
			Name:        r.Name,
			Note:        r.Note,
			AccessKey:   r.AccessKey,
			Confirmed:   r.IsConfirmed(),
			ConfirmedAt: r.ConfirmedAt,
		})
	}
	return out
}

func toEventResponses(events []entities.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type createEventRequest struct {
	Name        string              `json:"name"`
	Note        string              `json:"note"`
	Description string              `json:"description"`
	Start       time.Time           `json:"start"`
	End         time.Time           `json:"end"`
	Locations   []entities.Location `json:"locations"`
	Slots       []entities.Slot     `json:"slots"`
}

func (r createEventRequest) spec() input.CreateEventSpec {
	return input.CreateEventSpec{
		Name:        r.Name,
		Note:        r.Note,
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		Locations:   r.Locations,
		Slots:       r.Slots,
	}
}

// updateEventRequest leaves absent (or null) fields unchanged.
type updateEventRequest struct {
	Name        *string              `json:"name"`
	State       *entities.EventState `json:"state"`
	Note        *string              `json:"note"`
	Description *string              `json:"description"`
	Start       *time.Time           `json:"start"`
	End         *time.Time           `json:"end"`
	Locations   *[]entities.Location `json:"locations"`
	Slots       *[]entities.Slot     `json:"slots"`
}

func (r updateEventRequest) spec() input.UpdateEventSpec {
	return input.UpdateEventSpec{
		Name:        r.Name,
		State:       r.State,
		Note:        r.Note,
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		Locations:   r.Locations,
		Slots:       r.Slots,
	}
}

type setSlotsRequest struct {
	Slots []entities.Slot `json:"slots"`
}

type addRegistrationRequest struct {
	Position entities.PositionKey `json:"position"`
	UserKey  entities.UserKey     `json:"userKey"`
	Name     string               `json:"name"`
	Note     string               `json:"note"`
}

type updateRegistrationRequest struct {
	Position  *entities.PositionKey `json:"position"`
	Name      *string               `json:"name"`
	Note      *string               `json:"note"`
	Confirmed *bool                 `json:"confirmed"`
}

type confirmRequest struct {
	AccessKey string `json:"accessKey"`
}

type declineRequest struct {
	AccessKey string `json:"accessKey"`
	Reason    string `json:"reason"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
