package climate

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned when a call does not fit a unit's traits.
var (
	ErrInvalidMode        = errors.New("climate: invalid mode")
	ErrInvalidFanMode     = errors.New("climate: invalid fan mode")
	ErrInvalidSwingMode   = errors.New("climate: invalid swing mode")
	ErrInvalidTemperature = errors.New("climate: invalid temperature")
	ErrEmptyCall          = errors.New("climate: call changes nothing")
)

// Traits describe what a unit supports.
type Traits struct {
	MinTemperature  float64     `json:"min_temperature"`
	MaxTemperature  float64     `json:"max_temperature"`
	TemperatureStep float64     `json:"temperature_step"`
	Modes           []Mode      `json:"modes"`
	FanModes        []FanMode   `json:"fan_modes"`
	SwingModes      []SwingMode `json:"swing_modes"`

	// SupportsCurrentTemperature is set when a room sensor is attached.
	SupportsCurrentTemperature bool `json:"supports_current_temperature"`
}

// SupportsMode reports whether m is one of the unit's modes.
func (t Traits) SupportsMode(m Mode) bool {
	for _, v := range t.Modes {
		if v == m {
			return true
		}
	}
	return false
}

// SupportsFanMode reports whether f is one of the unit's fan modes.
func (t Traits) SupportsFanMode(f FanMode) bool {
	for _, v := range t.FanModes {
		if v == f {
			return true
		}
	}
	return false
}

// SupportsSwingMode reports whether s is one of the unit's swing modes.
func (t Traits) SupportsSwingMode(s SwingMode) bool {
	for _, v := range t.SwingModes {
		if v == s {
			return true
		}
	}
	return false
}

// ClampTemperature bounds f to the unit's range and rounds it to the step.
func (t Traits) ClampTemperature(f float64) float64 {
	if t.TemperatureStep > 0 {
		f = math.Round(f/t.TemperatureStep) * t.TemperatureStep
	}
	return math.Min(math.Max(f, t.MinTemperature), t.MaxTemperature)
}

// Call is a partial state change requested by a user or automation.
// Nil fields are left unchanged.
type Call struct {
	Mode              *Mode      `json:"mode,omitempty"`
	TargetTemperature *float64   `json:"target_temperature,omitempty"`
	FanMode           *FanMode   `json:"fan_mode,omitempty"`
	SwingMode         *SwingMode `json:"swing_mode,omitempty"`
}

// IsEmpty reports whether the call changes nothing.
func (c Call) IsEmpty() bool {
	return c.Mode == nil && c.TargetTemperature == nil && c.FanMode == nil && c.SwingMode == nil
}

// Validate checks the call against traits.
func (c Call) Validate(t Traits) error {
	if c.IsEmpty() {
		return ErrEmptyCall
	}
	if c.Mode != nil && !t.SupportsMode(*c.Mode) {
		return fmt.Errorf("%w: %q not supported", ErrInvalidMode, *c.Mode)
	}
	if c.FanMode != nil && !t.SupportsFanMode(*c.FanMode) {
		return fmt.Errorf("%w: %q not supported", ErrInvalidFanMode, *c.FanMode)
	}
	if c.SwingMode != nil && !t.SupportsSwingMode(*c.SwingMode) {
		return fmt.Errorf("%w: %q not supported", ErrInvalidSwingMode, *c.SwingMode)
	}
	if c.TargetTemperature != nil {
		v := *c.TargetTemperature
		if math.IsNaN(v) || v < t.MinTemperature || v > t.MaxTemperature {
			return fmt.Errorf("%w: %g outside %g..%g", ErrInvalidTemperature, v, t.MinTemperature, t.MaxTemperature)
		}
	}
	return nil
}

// Apply returns s with the call's fields applied. The target temperature is
// rounded to the traits' step.
func (c Call) Apply(s State, t Traits) State {
	if c.Mode != nil {
		s.Mode = *c.Mode
	}
	if c.TargetTemperature != nil {
		s.TargetTemperature = t.ClampTemperature(*c.TargetTemperature)
	}
	if c.FanMode != nil {
		s.FanMode = *c.FanMode
	}
	if c.SwingMode != nil {
		s.SwingMode = *c.SwingMode
	}
	return s
}
