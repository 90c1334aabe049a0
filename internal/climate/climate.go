// Package climate models an air-conditioner's controllable state: operating
// mode, target temperature, fan mode and swing mode, plus the traits that
// bound which values a given unit accepts.
package climate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Mode is the operating mode of a climate device.
type Mode string

// Operating modes.
const (
	ModeOff     Mode = "off"
	ModeAuto    Mode = "auto"
	ModeCool    Mode = "cool"
	ModeHeat    Mode = "heat"
	ModeDry     Mode = "dry"
	ModeFanOnly Mode = "fan_only"
)

// FanMode is the fan speed or air-direction preset.
type FanMode string

// Fan modes. Middle, Focus and Diffuse are air-direction presets some
// units expose through the fan control.
const (
	FanAuto    FanMode = "auto"
	FanLow     FanMode = "low"
	FanMedium  FanMode = "medium"
	FanHigh    FanMode = "high"
	FanMiddle  FanMode = "middle"
	FanFocus   FanMode = "focus"
	FanDiffuse FanMode = "diffuse"
)

// SwingMode is the vane oscillation setting.
type SwingMode string

// Swing modes.
const (
	SwingOff        SwingMode = "off"
	SwingVertical   SwingMode = "vertical"
	SwingHorizontal SwingMode = "horizontal"
	SwingBoth       SwingMode = "both"
)

// AllModes returns every operating mode.
func AllModes() []Mode {
	return []Mode{ModeOff, ModeAuto, ModeCool, ModeHeat, ModeDry, ModeFanOnly}
}

// AllFanModes returns every fan mode.
func AllFanModes() []FanMode {
	return []FanMode{FanAuto, FanLow, FanMedium, FanHigh, FanMiddle, FanFocus, FanDiffuse}
}

// AllSwingModes returns every swing mode.
func AllSwingModes() []SwingMode {
	return []SwingMode{SwingOff, SwingVertical, SwingHorizontal, SwingBoth}
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AllModes() {
		if m == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// ParseFanMode parses a fan mode name case-insensitively.
func ParseFanMode(s string) (FanMode, error) {
	m := FanMode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AllFanModes() {
		if m == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFanMode, s)
}

// ParseSwingMode parses a swing mode name case-insensitively.
func ParseSwingMode(s string) (SwingMode, error) {
	m := SwingMode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AllSwingModes() {
		if m == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSwingMode, s)
}

// State is the full controllable state of a unit.
type State struct {
	Mode              Mode      `json:"mode"`
	TargetTemperature float64   `json:"target_temperature"`
	FanMode           FanMode   `json:"fan_mode"`
	SwingMode         SwingMode `json:"swing_mode"`

	// CurrentTemperature is the room temperature from an attached sensor.
	// NaN when no reading is available; omitted from JSON in that case.
	CurrentTemperature float64 `json:"-"`
}

type stateJSON struct {
	Mode               Mode      `json:"mode"`
	TargetTemperature  float64   `json:"target_temperature"`
	FanMode            FanMode   `json:"fan_mode"`
	SwingMode          SwingMode `json:"swing_mode"`
	CurrentTemperature *float64  `json:"current_temperature,omitempty"`
}

// MarshalJSON encodes the state, leaving out an unknown current temperature.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		Mode:              s.Mode,
		TargetTemperature: s.TargetTemperature,
		FanMode:           s.FanMode,
		SwingMode:         s.SwingMode,
	}
	if !math.IsNaN(s.CurrentTemperature) {
		ct := s.CurrentTemperature
		out.CurrentTemperature = &ct
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a state; a missing current temperature becomes NaN.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Mode = in.Mode
	s.TargetTemperature = in.TargetTemperature
	s.FanMode = in.FanMode
	s.SwingMode = in.SwingMode
	s.CurrentTemperature = math.NaN()
	if in.CurrentTemperature != nil {
		s.CurrentTemperature = *in.CurrentTemperature
	}
	return nil
}

// Map flattens the state for the device registry and state history.
func (s State) Map() map[string]any {
	m := map[string]any{
		"mode":               string(s.Mode),
		"target_temperature": s.TargetTemperature,
		"fan_mode":           string(s.FanMode),
		"swing_mode":         string(s.SwingMode),
	}
	if !math.IsNaN(s.CurrentTemperature) {
		m["current_temperature"] = s.CurrentTemperature
	}
	return m
}

// StateFromMap is the inverse of Map. Unknown values are rejected.
func StateFromMap(m map[string]any) (State, error) {
	st := State{CurrentTemperature: math.NaN()}
	var err error

	mode, _ := m["mode"].(string)
	if st.Mode, err = ParseMode(mode); err != nil {
		return State{}, err
	}
	fan, _ := m["fan_mode"].(string)
	if st.FanMode, err = ParseFanMode(fan); err != nil {
		return State{}, err
	}
	swing, _ := m["swing_mode"].(string)
	if st.SwingMode, err = ParseSwingMode(swing); err != nil {
		return State{}, err
	}
	target, ok := m["target_temperature"].(float64)
	if !ok {
		return State{}, fmt.Errorf("%w: target_temperature missing", ErrInvalidTemperature)
	}
	st.TargetTemperature = target
	if ct, ok := m["current_temperature"].(float64); ok {
		st.CurrentTemperature = ct
	}
	return st, nil
}

// Power reports whether the unit is running.
func (s State) Power() bool {
	return s.Mode != ModeOff
}
