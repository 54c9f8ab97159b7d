package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/input"
)

func registrationKeyParam(r *http.Request) entities.RegistrationKey {
	return entities.RegistrationKey(chi.URLParam(r, "registrationKey"))
}

func (a *api) addRegistration(w http.ResponseWriter, r *http.Request) {
	var req addRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	event, err := a.registrations.AddRegistration(r.Context(), Caller(r.Context()), eventKeyParam(r), input.RegistrationSpec{
		Position: req.Position,
		User:     req.UserKey,
		Name:     req.Name,
		Note:     req.Note,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (a *api) updateRegistration(w http.ResponseWriter, r *http.Request) {
	var req updateRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	event, err := a.registrations.UpdateRegistration(r.Context(), Caller(r.Context()), eventKeyParam(r), registrationKeyParam(r), input.UpdateRegistrationSpec{
		Position:  req.Position,
		Name:      req.Name,
		Note:      req.Note,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (a *api) removeRegistration(w http.ResponseWriter, r *http.Request) {
	event, err := a.registrations.RemoveRegistration(r.Context(), Caller(r.Context()), eventKeyParam(r), registrationKeyParam(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

// confirmRegistration is reachable without a token; the access key from the
// confirmation link authenticates the request.
func (a *api) confirmRegistration(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.confirmations.ConfirmRegistration(r.Context(), eventKeyParam(r), registrationKeyParam(r), req.AccessKey); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) declineRegistration(w http.ResponseWriter, r *http.Request) {
	var req declineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.confirmations.DeclineRegistration(r.Context(), eventKeyParam(r), registrationKeyParam(r), req.AccessKey, req.Reason); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
