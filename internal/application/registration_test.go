package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/input"
)

func TestAddRegistration_SelfSignupIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users("u1", "u2", "u3", "u4", "u9"),
		voyage(entities.EventStateOpenForSignup, testNow.Add(30*24*time.Hour)))
	member := entities.NewSignedInUser("u9", domain.RoleTeamMember)
	spec := input.RegistrationSpec{Position: "deckhand", User: "u9", Note: "vegetarian"}

	if _, err := h.registrations.AddRegistration(context.Background(), member, "e1", spec); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	got, err := h.registrations.AddRegistration(context.Background(), member, "e1", spec)
	if err != nil {
		t.Fatalf("second signup: %v", err)
	}

	count := 0
	for _, r := range h.store.get("e1").Registrations {
		if r.User == "u9" {
			count++
			if r.AccessKey == "" {
				t.Fatal("new registration without access key")
			}
		}
	}
	if count != 1 {
		t.Fatalf("registrations for u9 = %d, want 1", count)
	}
	if own, ok := got.RegistrationOf("u9"); !ok || own.Note != "vegetarian" {
		t.Fatalf("caller should see own registration, got %+v", own)
	}
	if got := len(h.sink.ofType(entities.NotificationAddedToWaitingList)); got != 1 {
		t.Fatalf("waiting-list notifications = %d, want 1", got)
	}
	planners := h.sink.ofType(entities.NotificationNewRegistration)
	if len(planners) != 1 || planners[0].Recipient.Role != domain.RoleTeamPlanner {
		t.Fatalf("unexpected planner notifications: %+v", planners)
	}
}

func TestAddRegistration_ByPlannerDoesNotNotifyPlanners(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users("u9"), voyage(entities.EventStateOpenForSignup, testNow.Add(30*24*time.Hour)))

	if _, err := h.registrations.AddRegistration(context.Background(), teamPlanner, "e1", input.RegistrationSpec{
		Position: "deckhand",
		User:     "u9",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(h.sink.ofType(entities.NotificationNewRegistration)); got != 0 {
		t.Fatalf("planner notifications = %d, want 0", got)
	}
	if got := len(h.sink.ofType(entities.NotificationAddedToWaitingList)); got != 1 {
		t.Fatalf("waiting-list notifications = %d, want 1", got)
	}
}

func TestAddRegistration_Rejections(t *testing.T) {
	t.Parallel()

	event := voyage(entities.EventStateOpenForSignup, testNow.Add(30*24*time.Hour))
	event.Registrations = append(event.Registrations, entities.Registration{Key: "r5", Position: "deckhand", Name: "Hein Blöd"})
	member := entities.NewSignedInUser("u9", domain.RoleTeamMember)

	tests := []struct {
		name   string
		caller entities.SignedInUser
		spec   input.RegistrationSpec
		want   domain.Code
	}{
		{"neither user nor guest", teamPlanner, input.RegistrationSpec{Position: "deckhand"}, domain.CodeInvalidArgument},
		{"both user and guest", teamPlanner, input.RegistrationSpec{Position: "deckhand", User: "u9", Name: "x"}, domain.CodeInvalidArgument},
		{"duplicate guest name", teamPlanner, input.RegistrationSpec{Position: "deckhand", Name: "hein blöd"}, domain.CodeInvalidArgument},
		{"missing position", member, input.RegistrationSpec{User: "u9"}, domain.CodeInvalidArgument},
		{"member sends neither user nor guest", member, input.RegistrationSpec{Position: "deckhand"}, domain.CodeInvalidArgument},
		{"member sends blank guest name", member, input.RegistrationSpec{Position: "deckhand", Name: "  "}, domain.CodeInvalidArgument},
		{"member adds other user", member, input.RegistrationSpec{Position: "deckhand", User: "u8"}, domain.CodeMissingPermission},
		{"member adds guest", member, input.RegistrationSpec{Position: "deckhand", Name: "Gast"}, domain.CodeMissingPermission},
		{"anonymous", entities.SignedInUser{}, input.RegistrationSpec{Position: "deckhand", User: "u9"}, domain.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(testNow, users(), event)
			_, err := h.registrations.AddRegistration(context.Background(), tt.caller, "e1", tt.spec)
			if got := domain.CodeOf(err); got != tt.want {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.want, err)
			}
			if h.store.writes != 0 {
				t.Fatal("rejected registration was written")
			}
		})
	}
}

func TestAddRegistration_HiddenEventIsNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users(), voyage(entities.EventStateDraft, testNow.Add(30*24*time.Hour)))
	member := entities.NewSignedInUser("u9", domain.RoleTeamMember)

	_, err := h.registrations.AddRegistration(context.Background(), member, "e1", input.RegistrationSpec{Position: "deckhand", User: "u9"})
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveRegistration_CrewSelfCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users("u1", "u2", "u3", "u4"),
		voyage(entities.EventStatePlanned, testNow.Add(30*24*time.Hour)))
	member := entities.NewSignedInUser("u2", domain.RoleTeamMember)

	got, err := h.registrations.RemoveRegistration(context.Background(), member, "e1", "r2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := got.Registration("r2"); ok {
		t.Fatal("registration still present")
	}
	stored := h.store.get("e1")
	for _, s := range stored.Slots {
		if s.AssignedRegistration == "r2" {
			t.Fatalf("slot %s still references removed registration", s.Key)
		}
	}

	if got := h.sink.ofType(entities.NotificationRemovedFromCrew); len(got) != 1 || got[0].Recipient.User.Key != "u2" {
		t.Fatalf("unexpected removed-from-crew notifications: %+v", got)
	}
	if got := h.sink.ofType(entities.NotificationCrewRegistrationCanceled); len(got) != 1 {
		t.Fatalf("planner notifications = %d, want 1", len(got))
	}
}

func TestRemoveRegistration_WaitingList(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users("u4"), voyage(entities.EventStatePlanned, testNow.Add(30*24*time.Hour)))

	if _, err := h.registrations.RemoveRegistration(context.Background(), teamPlanner, "e1", "r4"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(h.sink.ofType(entities.NotificationRemovedFromWaitingList)); got != 1 {
		t.Fatalf("waiting-list notifications = %d, want 1", got)
	}
	if got := h.sink.count(); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}
}

func TestRemoveRegistration_Permissions(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users(), voyage(entities.EventStatePlanned, testNow.Add(30*24*time.Hour)))
	member := entities.NewSignedInUser("u1", domain.RoleTeamMember)

	_, err := h.registrations.RemoveRegistration(context.Background(), member, "e1", "r2")
	if !errors.Is(err, domain.ErrMissingPermission) {
		t.Fatalf("expected missing permission, got %v", err)
	}
	_, err = h.registrations.RemoveRegistration(context.Background(), member, "e1", "r-unknown")
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if h.store.writes != 0 {
		t.Fatal("rejected removal was written")
	}
}

func TestUpdateRegistration(t *testing.T) {
	t.Parallel()

	h := newHarness(testNow, users(), voyage(entities.EventStatePlanned, testNow.Add(30*24*time.Hour)))
	member := entities.NewSignedInUser("u1", domain.RoleTeamMember)

	got, err := h.registrations.UpdateRegistration(context.Background(), member, "e1", "r1", input.UpdateRegistrationSpec{
		Note:      ptr("arrive late"),
		Confirmed: ptr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	own, _ := got.Registration("r1")
	if own.Note != "arrive late" || own.ConfirmedAt == nil || !own.ConfirmedAt.Equal(testNow) {
		t.Fatalf("unexpected registration: %+v", own)
	}
	if got.Slots[0].AssignedRegistration != "r1" {
		t.Fatal("assignment lost on update")
	}

	_, err = h.registrations.UpdateRegistration(context.Background(), member, "e1", "r2", input.UpdateRegistrationSpec{Note: ptr("x")})
	if !errors.Is(err, domain.ErrMissingPermission) {
		t.Fatalf("expected missing permission, got %v", err)
	}
}
