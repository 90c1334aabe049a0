package device

import (
	"context"
	"time"
)

// State history source values.
const (
	// StateHistorySourceCommand marks a change requested over MQTT or the API.
	StateHistorySourceCommand = "command"
	// StateHistorySourceIR marks a change decoded from the unit's own remote.
	StateHistorySourceIR = "ir"
	// StateHistorySourceSensor marks a room temperature update.
	StateHistorySourceSensor = "sensor"
	// StateHistorySourceSetup marks the state assumed at startup.
	StateHistorySourceSetup = "setup"
)

// StateHistoryEntry is one recorded climate state snapshot.
type StateHistoryEntry struct {
	ID        int64     `json:"id"`
	DeviceID  string    `json:"device_id"`
	State     State     `json:"state"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// StateHistoryRepository stores and retrieves device state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange appends a snapshot. An empty source is recorded
	// as StateHistorySourceCommand.
	RecordStateChange(ctx context.Context, deviceID string, state State, source string) error

	// GetHistory returns up to limit entries for the device, newest first.
	GetHistory(ctx context.Context, deviceID string, limit int) ([]StateHistoryEntry, error)

	// PruneHistory deletes entries older than olderThan and returns the count.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}
