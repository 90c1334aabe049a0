package device

import (
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
)

// Device is one configured climate unit.
// It matches the devices table in migrations/20261015_120000_devices.up.sql.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Platform is the configuration platform (e.g. "mbishi"); Class is the
	// generated class (e.g. "esphome::mbishi::MbishiClimate").
	Platform string `json:"platform"`
	Class    string `json:"class"`

	Config Config         `json:"config"`
	Traits climate.Traits `json:"traits"`

	State          State      `json:"state"`
	StateUpdatedAt *time.Time `json:"state_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Config is the validated configuration record, flattened to JSON-safe values.
type Config map[string]any

// State is a climate state flattened by climate.State.Map.
type State map[string]any

// ConfigFromRecord converts a validated configuration record to a Config.
// Identifiers, durations and other Stringers are stored as their string form.
func ConfigFromRecord(rec map[string]any) Config {
	out := make(Config, len(rec))
	for k, v := range rec {
		switch val := v.(type) {
		case nil, bool, string, int, int64, float64:
			out[k] = val
		case fmt.Stringer:
			out[k] = val.String()
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// StateFromClimate flattens a climate state.
func StateFromClimate(st climate.State) State {
	return State(st.Map())
}

// ClimateState decodes the stored state.
// It returns ErrInvalidState when none has been recorded yet.
func (d *Device) ClimateState() (climate.State, error) {
	if len(d.State) == 0 {
		return climate.State{CurrentTemperature: math.NaN()}, fmt.Errorf("%w: no state recorded for %s", ErrInvalidState, d.ID)
	}
	st, err := climate.StateFromMap(d.State)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return st, nil
}

// DeepCopy creates an independent copy of the Device.
// Maps and trait slices are cloned so the copy can be modified freely.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.Config = deepCopyMap(d.Config)
	cpy.State = deepCopyMap(d.State)
	cpy.Traits = copyTraits(d.Traits)

	if d.StateUpdatedAt != nil {
		ts := *d.StateUpdatedAt
		cpy.StateUpdatedAt = &ts
	}
	return &cpy
}

func copyTraits(t climate.Traits) climate.Traits {
	t.Modes = append([]climate.Mode(nil), t.Modes...)
	t.FanModes = append([]climate.FanMode(nil), t.FanModes...)
	t.SwingModes = append([]climate.SwingMode(nil), t.SwingModes...)
	return t
}

// deepCopyMap copies m, recursing into nested maps and slices.
func deepCopyMap[M ~map[string]any](m M) M {
	if m == nil {
		return nil
	}
	cpy := make(M, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v
	}
}
