package device

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDevice(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Device)
		wantErr error
	}{
		{"valid", func(*Device) {}, nil},
		{"missing id", func(d *Device) { d.ID = "" }, ErrInvalidDevice},
		{"blank name", func(d *Device) { d.Name = "   " }, ErrInvalidName},
		{"long name", func(d *Device) { d.Name = strings.Repeat("a", maxNameLength+1) }, ErrInvalidName},
		{"missing platform", func(d *Device) { d.Platform = "" }, ErrInvalidDevice},
		{"missing class", func(d *Device) { d.Class = "" }, ErrInvalidDevice},
		{"long config value", func(d *Device) {
			d.Config["name"] = strings.Repeat("x", maxStringValueLen+1)
		}, ErrInvalidDevice},
		{"too many state keys", func(d *Device) {
			d.State = State{}
			for i := 0; i <= maxStateKeys; i++ {
				d.State[strings.Repeat("k", i+1)] = i
			}
		}, ErrInvalidDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDevice("ac1", "AC One")
			tt.mutate(d)

			err := ValidateDevice(d)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDevice() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDevice() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDevice_Nil(t *testing.T) {
	if err := ValidateDevice(nil); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("ValidateDevice(nil) error = %v, want ErrInvalidDevice", err)
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Living Room AC", "living-room-ac"},
		{"bedroom_ac", "bedroom-ac"},
		{"  Office -- Unit #2  ", "office-unit-2"},
		{"Ünïcode Room", "ncode-room"},
		{"", ""},
		{strings.Repeat("ab ", 40), strings.TrimRight(strings.Repeat("ab-", 17), "-")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSlug(tt.name); got != tt.want {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestConfigFromRecord(t *testing.T) {
	rec := map[string]any{
		"id":            stringerID("living_ac"),
		"supports_heat": true,
		"visual":        map[string]int{"min": 16},
	}

	cfg := ConfigFromRecord(rec)
	if cfg["id"] != "living_ac" {
		t.Errorf("id = %v, want living_ac", cfg["id"])
	}
	if cfg["supports_heat"] != true {
		t.Errorf("supports_heat = %v, want true", cfg["supports_heat"])
	}
	if cfg["visual"] != "map[min:16]" {
		t.Errorf("visual = %v, want formatted map", cfg["visual"])
	}
}

type stringerID string

func (s stringerID) String() string { return string(s) }
