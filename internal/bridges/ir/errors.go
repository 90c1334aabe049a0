package ir

import "errors"

// Domain errors for the IR bridge package.
var (
	// ErrDeviceNotConfigured is returned for a command to an unknown device.
	ErrDeviceNotConfigured = errors.New("ir: device not configured")

	// ErrNoFactory is returned when a climate class has no runtime constructor.
	ErrNoFactory = errors.New("ir: no factory for class")

	// ErrInvalidCommand is returned when a command payload cannot be parsed.
	ErrInvalidCommand = errors.New("ir: invalid command")

	// ErrInvalidReading is returned when a sensor payload holds no number.
	ErrInvalidReading = errors.New("ir: invalid sensor reading")
)
