package crew

import (
	"testing"

	"eventplanner/internal/domain/entities"
)

func TestOptimizeSlots_KeepsEveryAssignment(t *testing.T) {
	t.Parallel()

	event := entities.Event{
		Registrations: []entities.Registration{
			{Key: "r-deckhand", Position: "deckhand"},
			{Key: "r-cook", Position: "cook"},
		},
		Slots: []entities.Slot{
			slot("s-cook", 3, "r-cook", "cook"),
			slot("s-first", 1, "", "deckhand", "matrose"),
			slot("s-second", 2, "r-deckhand", "deckhand"),
		},
	}

	got := OptimizeSlots(event)

	byKey := map[entities.SlotKey]entities.RegistrationKey{}
	for _, s := range got.Slots {
		byKey[s.Key] = s.AssignedRegistration
	}
	if byKey["s-first"] != "" || byKey["s-second"] != "r-deckhand" || byKey["s-cook"] != "r-cook" {
		t.Fatalf("assignments changed: %v", byKey)
	}
	if event.Slots[0].Key != "s-cook" {
		t.Fatal("input slots were reordered in place")
	}
	order := []entities.SlotKey{got.Slots[0].Key, got.Slots[1].Key, got.Slots[2].Key}
	if order[0] != "s-first" || order[1] != "s-second" || order[2] != "s-cook" {
		t.Fatalf("slot order = %v, want by order value", order)
	}
}

func TestOptimizeSlots_OpenSlotsLastWithinOrder(t *testing.T) {
	t.Parallel()

	event := entities.Event{
		Slots: []entities.Slot{
			slot("open-a", 1, "", "deckhand"),
			slot("filled", 1, "r1", "deckhand"),
			slot("open-b", 1, "", "deckhand"),
		},
	}

	got := OptimizeSlots(event)

	if got.Slots[0].Key != "filled" || got.Slots[1].Key != "open-a" || got.Slots[2].Key != "open-b" {
		t.Fatalf("unexpected order: %+v", got.Slots)
	}
	if diff := DiffAssignments(event.Slots, got.Slots); !diff.IsEmpty() {
		t.Fatalf("optimize changed crew membership: %+v", diff)
	}
}
