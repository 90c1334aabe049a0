package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
)

// Protocol is the protocol identifier carried in bridge messages.
const Protocol = "ir"

// CommandMessage asks a unit to change state.
// Topic: graylogic/command/ir/{device_id}
type CommandMessage struct {
	// ID correlates the command with its acknowledgement. One is generated
	// when the sender leaves it empty.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`

	// Call holds the fields to change; omitted fields keep their value.
	Call climate.Call `json:"call"`

	// Source indicates where the command originated ("api", "automation", ...).
	Source string `json:"source,omitempty"`
}

// ParseCommand decodes a command payload for deviceID. The device ID from the
// topic wins over one in the payload.
func ParseCommand(deviceID string, payload []byte) (CommandMessage, error) {
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return CommandMessage{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	cmd.DeviceID = deviceID
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = time.Now().UTC()
	}
	return cmd, nil
}

// AckStatus represents the acknowledgment status of a command.
type AckStatus string

const (
	// AckAccepted indicates the frame was handed to the IR blaster.
	AckAccepted AckStatus = "accepted"

	// AckFailed indicates the command could not be executed.
	AckFailed AckStatus = "failed"
)

// AckMessage acknowledges a command.
// Topic: graylogic/ack/ir/{device_id}
type AckMessage struct {
	CommandID string    `json:"command_id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Status    AckStatus `json:"status"`
	Protocol  string    `json:"protocol"`

	// State is the resulting state of an accepted command.
	State *climate.State `json:"state,omitempty"`

	Error *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for command failures.
const (
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeTransmitFailed    = "TRANSMIT_FAILED"
)

// NewAckMessage acknowledges an accepted command with the resulting state.
func NewAckMessage(cmd CommandMessage, st climate.State) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		DeviceID:  cmd.DeviceID,
		Status:    AckAccepted,
		Protocol:  Protocol,
		State:     &st,
	}
}

// NewAckError creates a failed acknowledgement.
func NewAckError(cmd CommandMessage, code, message string) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		DeviceID:  cmd.DeviceID,
		Status:    AckFailed,
		Protocol:  Protocol,
		Error:     &AckError{Code: code, Message: message},
	}
}

// StateMessage carries a unit's state.
// Topic: graylogic/state/ir/{device_id}, QoS 1, retained.
type StateMessage struct {
	DeviceID  string        `json:"device_id"`
	Timestamp time.Time     `json:"timestamp"`
	State     climate.State `json:"state"`
	Protocol  string        `json:"protocol"`

	// Source is what caused the change: command, ir, sensor or setup.
	Source string `json:"source"`
}

// NewStateMessage creates a state message for a device.
func NewStateMessage(deviceID string, st climate.State, source string) StateMessage {
	return StateMessage{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC(),
		State:     st,
		Protocol:  Protocol,
		Source:    source,
	}
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	HealthStarting HealthStatus = "starting"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage reports bridge health.
// Topic: graylogic/health/ir, QoS 1, retained.
type HealthMessage struct {
	Bridge         string            `json:"bridge"`
	Timestamp      time.Time         `json:"timestamp"`
	Status         HealthStatus      `json:"status"`
	Version        string            `json:"version,omitempty"`
	UptimeSeconds  int64             `json:"uptime_seconds"`
	DevicesManaged int               `json:"devices_managed"`
	Reason         string            `json:"reason,omitempty"`
	Statistics     *BridgeStatistics `json:"statistics,omitempty"`
}

// BridgeStatistics counts bridge traffic since start.
type BridgeStatistics struct {
	CommandsAccepted uint64 `json:"commands_accepted"`
	CommandsFailed   uint64 `json:"commands_failed"`
	FramesSent       uint64 `json:"frames_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesIgnored    uint64 `json:"frames_ignored"`
}

// ParseReading extracts a temperature from a sensor payload: either a bare
// number or a JSON object with a "temperature" or "value" field.
func ParseReading(payload []byte) (float64, error) {
	s := strings.TrimSpace(string(payload))
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		for _, key := range []string{"temperature", "value"} {
			if v, ok := obj[key].(float64); ok {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidReading, s)
}
