package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const devicesYAML = `
climate:
  - platform: mbishi
    id: ac1
    name: Living room
    receiver_id: ir_rx

remote_transmitter:
  id: ir_tx
  pin: GPIO14

remote_receiver:
  id: ir_rx
  pin: 5
`

func writeDevices(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write devices: %v", err)
	}
	return path
}

func TestRun_Stdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-devices", writeDevices(t, devicesYAML), "-name", "lounge"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v (stderr: %s)", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"// Auto generated by irclimate-gen.",
		"// Build: ",
		"esphome::mbishi::MbishiClimate *ac1;",
		`App.pre_setup("lounge"`,
		"ir_rx->register_listener(ac1);",
		"ac1->set_transmitter(ir_tx);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_OutputFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "main.cpp")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-devices", writeDevices(t, devicesYAML), "-output", output}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), `App.pre_setup("irclimate"`) {
		t.Errorf("default node name not used:\n%s", data)
	}
}

func TestRun_InvalidDevicesWritesNothing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "main.cpp")
	path := writeDevices(t, `
climate:
  - platform: mbishi
    id: ac1
    name: Living room
    receiver_id: missing_rx

remote_transmitter:
  id: ir_tx
  pin: GPIO14
`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-devices", path, "-output", output}, &stdout, &stderr)
	if err == nil {
		t.Fatal("run() should fail for an undeclared receiver")
	}
	if !strings.Contains(err.Error(), "invalid device configuration") {
		t.Errorf("error = %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output file should not be created")
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: options{devices: "configs/devices.yaml", output: "-", name: defaultNodeName},
		},
		{
			name: "all flags",
			args: []string{"-devices", "d.yaml", "-output", "out.cpp", "-name", "n1", "-v"},
			want: options{devices: "d.yaml", output: "out.cpp", name: "n1", verbose: true},
		},
		{name: "empty name", args: []string{"-name", ""}, wantErr: true},
		{name: "extra argument", args: []string{"stray"}, wantErr: true},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			got, err := parseFlags(tt.args, &stderr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFlags_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "-devices") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}
