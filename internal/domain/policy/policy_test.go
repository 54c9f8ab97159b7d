package policy

import (
	"errors"
	"testing"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	member := entities.NewSignedInUser("u1", domain.RoleTeamMember)
	teamPlanner := entities.NewSignedInUser("u2", domain.RoleTeamPlanner)
	eventPlanner := entities.NewSignedInUser("u3", domain.RoleEventPlanner)
	anonymous := entities.SignedInUser{}

	tests := []struct {
		name    string
		op      Operation
		caller  entities.SignedInUser
		subject Subject
		want    error
	}{
		{"member reads", ReadEvents, member, Subject{}, nil},
		{"anonymous reads", ReadEvents, anonymous, Subject{}, domain.ErrUnauthorized},
		{"member creates", CreateEvent, member, Subject{}, domain.ErrMissingPermission},
		{"event planner creates", CreateEvent, eventPlanner, Subject{}, nil},
		{"event planner sets slots", SetSlots, eventPlanner, Subject{}, domain.ErrMissingPermission},
		{"team planner sets slots", SetSlots, teamPlanner, Subject{}, nil},
		{"team planner edits details", UpdateEventDetails, teamPlanner, Subject{}, domain.ErrMissingPermission},
		{"member signs up self", AddRegistration, member, Subject{RegistrationUser: "u1"}, nil},
		{"member signs up other", AddRegistration, member, Subject{RegistrationUser: "u9"}, domain.ErrMissingPermission},
		{"member adds guest", AddRegistration, member, Subject{}, domain.ErrMissingPermission},
		{"team planner adds guest", AddRegistration, teamPlanner, Subject{}, nil},
		{"team planner removes other", RemoveRegistration, teamPlanner, Subject{RegistrationUser: "u1"}, nil},
		{"event planner removes self", RemoveRegistration, eventPlanner, Subject{RegistrationUser: "u3"}, domain.ErrMissingPermission},
		{"anonymous removes guest", RemoveRegistration, anonymous, Subject{}, domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.op, tt.caller, tt.subject)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Check() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheck_UnknownOperation(t *testing.T) {
	t.Parallel()

	err := Check("nope", entities.NewSignedInUser("u1", domain.RoleAdmin), Subject{})
	if domain.CodeOf(err) != domain.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestIsSelf(t *testing.T) {
	t.Parallel()

	caller := entities.NewSignedInUser("u1", domain.RoleTeamMember)
	if !IsSelf(caller, Subject{RegistrationUser: "u1"}) {
		t.Fatal("expected self")
	}
	if IsSelf(caller, Subject{}) || IsSelf(entities.SignedInUser{}, Subject{}) {
		t.Fatal("guest registrations are never self")
	}
}
