package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/pkg/tz"
)

func eventKeyParam(r *http.Request) entities.EventKey {
	return entities.EventKey(chi.URLParam(r, "eventKey"))
}

// listEvents handles GET /events?year=. Without a year the current Berlin
// calendar year is listed.
func (a *api) listEvents(w http.ResponseWriter, r *http.Request) {
	year := a.now().In(tz.Berlin).Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.fail(w, r, domain.Wrap(domain.CodeInvalidArgument, "year must be a number", err))
			return
		}
		year = parsed
	}

	events, err := a.events.ListByYear(r.Context(), Caller(r.Context()), year)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(events))
}

func (a *api) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := a.events.GetByKey(r.Context(), Caller(r.Context()), eventKeyParam(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (a *api) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	event, err := a.events.Create(r.Context(), Caller(r.Context()), req.spec())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (a *api) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	event, err := a.events.UpdateDetails(r.Context(), Caller(r.Context()), eventKeyParam(r), req.spec())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (a *api) setSlots(w http.ResponseWriter, r *http.Request) {
	var req setSlotsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	event, err := a.events.SetSlots(r.Context(), Caller(r.Context()), eventKeyParam(r), req.Slots)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (a *api) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := a.events.Delete(r.Context(), Caller(r.Context()), eventKeyParam(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
