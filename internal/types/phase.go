package types

import (
	"encoding/json"
	"fmt"
)

// PhaseKind discriminates the event phase tag.
type PhaseKind uint8

const (
	// PhaseApplyExtrinsic marks an event emitted while applying the
	// extrinsic at a specific index.
	PhaseApplyExtrinsic PhaseKind = iota
	// PhaseFinalization marks a block-level event emitted during finalization hooks.
	PhaseFinalization
	// PhaseInitialization marks a block-level event emitted during initialization hooks.
	PhaseInitialization
)

// Phase tags an event record with the extrinsic (by index) or lifecycle
// stage that produced it. Association is resolved by matching this tag,
// never by positional inference.
type Phase struct {
	Kind PhaseKind
	// Extrinsic is the extrinsic index; only meaningful when Kind is
	// PhaseApplyExtrinsic.
	Extrinsic uint32
}

// ApplyExtrinsic returns a phase tagging an event to the extrinsic at index i.
func ApplyExtrinsic(i uint32) Phase {
	return Phase{Kind: PhaseApplyExtrinsic, Extrinsic: i}
}

// Finalization returns the block-level finalization phase.
func Finalization() Phase {
	return Phase{Kind: PhaseFinalization}
}

// Initialization returns the block-level initialization phase.
func Initialization() Phase {
	return Phase{Kind: PhaseInitialization}
}

// AppliesTo reports whether this phase ties the event to the extrinsic at index i.
func (p Phase) AppliesTo(i uint32) bool {
	return p.Kind == PhaseApplyExtrinsic && p.Extrinsic == i
}

// IsBlockLevel reports whether the event belongs to a lifecycle hook
// rather than an extrinsic.
func (p Phase) IsBlockLevel() bool {
	return p.Kind == PhaseFinalization || p.Kind == PhaseInitialization
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseApplyExtrinsic:
		return fmt.Sprintf("ApplyExtrinsic(%d)", p.Extrinsic)
	case PhaseFinalization:
		return "Finalization"
	case PhaseInitialization:
		return "Initialization"
	default:
		return fmt.Sprintf("Unknown(%d)", p.Kind)
	}
}

// phaseJSON is the wire form of Phase:
// {"apply_extrinsic": 2}, "finalization" or "initialization".
type phaseJSON struct {
	ApplyExtrinsic *uint32 `json:"apply_extrinsic,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PhaseApplyExtrinsic:
		idx := p.Extrinsic
		return json.Marshal(phaseJSON{ApplyExtrinsic: &idx})
	case PhaseFinalization:
		return json.Marshal("finalization")
	case PhaseInitialization:
		return json.Marshal("initialization")
	default:
		return nil, fmt.Errorf("unknown phase kind %d", p.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "finalization":
			*p = Finalization()
			return nil
		case "initialization":
			*p = Initialization()
			return nil
		default:
			return fmt.Errorf("unknown phase %q", s)
		}
	}

	var obj phaseJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid phase: %w", err)
	}
	if obj.ApplyExtrinsic == nil {
		return fmt.Errorf("invalid phase: missing apply_extrinsic index")
	}

	*p = ApplyExtrinsic(*obj.ApplyExtrinsic)
	return nil
}
