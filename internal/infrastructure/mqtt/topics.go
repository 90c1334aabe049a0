package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout. Device topics use the flat bridge scheme
// graylogic/{category}/ir/{device_id}; raw IR frames live under graylogic/ir.
const (
	TopicRoot     = "graylogic"
	TopicProtocol = "ir"
)

// Topics builds the MQTT topics used by the IR bridge.
//
//	topics := mqtt.Topics{}
//	topics.State("living-room-ac")   // graylogic/state/ir/living-room-ac
//	topics.Transmit("ir_tx")         // graylogic/ir/ir_tx/transmit
type Topics struct{}

// Command is where callers publish climate calls for a device.
func (Topics) Command(deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicRoot, TopicProtocol, deviceID)
}

// State carries the retained climate state of a device.
func (Topics) State(deviceID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicRoot, TopicProtocol, deviceID)
}

// Ack acknowledges a command.
func (Topics) Ack(deviceID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicRoot, TopicProtocol, deviceID)
}

// Health carries the bridge health report.
func (Topics) Health() string {
	return fmt.Sprintf("%s/health/%s", TopicRoot, TopicProtocol)
}

// Transmit is the default topic an IR blaster listens on.
func (Topics) Transmit(transmitterID string) string {
	return fmt.Sprintf("%s/%s/%s/transmit", TopicRoot, TopicProtocol, transmitterID)
}

// Receive is the default topic an IR receiver publishes captured frames on.
func (Topics) Receive(receiverID string) string {
	return fmt.Sprintf("%s/%s/%s/receive", TopicRoot, TopicProtocol, receiverID)
}

// ServiceStatus is the retained online/offline status of the service.
func (Topics) ServiceStatus() string {
	return TopicRoot + "/system/irclimate/status"
}

// AllCommands matches every device command topic.
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/%s/+", TopicRoot, TopicProtocol)
}

// AllStates matches every device state topic.
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicRoot, TopicProtocol)
}

// DeviceFromTopic extracts the device ID from a command, state or ack topic.
func (Topics) DeviceFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicRoot || parts[2] != TopicProtocol || parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
