package entities

// Criticality is informational only; it affects display and slot ordering.
type Criticality int

const (
	CriticalityOptional Criticality = 0
	CriticalityRequired Criticality = 1
	CriticalityCritical Criticality = 2
)

// Slot is one crew position on an event. An empty AssignedRegistration
// means the position is open.
type Slot struct {
	Key                  SlotKey         `json:"key"`
	Order                int             `json:"order"`
	Criticality          Criticality     `json:"criticality"`
	Positions            []PositionKey   `json:"positions"`
	Name                 string          `json:"name,omitempty"`
	AssignedRegistration RegistrationKey `json:"assignedRegistrationKey,omitempty"`
}

func (s Slot) IsAssigned() bool {
	return s.AssignedRegistration != ""
}

// Accepts reports whether a registration for position may fill this slot.
func (s Slot) Accepts(position PositionKey) bool {
	for _, p := range s.Positions {
		if p == position {
			return true
		}
	}
	return false
}

func (s Slot) clone() Slot {
	out := s
	out.Positions = append([]PositionKey(nil), s.Positions...)
	return out
}
