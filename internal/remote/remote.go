package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Domain errors for the remote package.
var (
	// ErrInvalidTimings is returned for a malformed raw frame.
	ErrInvalidTimings = errors.New("remote: invalid timings")

	// ErrNoTransmitter is returned when a device has no transmitter bound.
	ErrNoTransmitter = errors.New("remote: no transmitter")
)

// Transmitter sends raw frames.
type Transmitter interface {
	Transmit(ctx context.Context, data TransmitData) error
}

// Listener handles received raw frames. OnReceive returns true when the
// frame was recognised.
type Listener interface {
	OnReceive(data *ReceiveData) bool
}

// Receiver fans a received frame out to its listeners until one recognises it.
//
// Thread Safety: all methods are safe for concurrent use.
type Receiver struct {
	id        string
	tolerance int

	mu        sync.RWMutex
	listeners []Listener
}

// NewReceiver creates a receiver with the given match tolerance in percent.
func NewReceiver(id string, tolerance int) *Receiver {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Receiver{id: id, tolerance: tolerance}
}

// ID returns the configured receiver ID.
func (r *Receiver) ID() string {
	return r.id
}

// RegisterListener adds a listener.
func (r *Receiver) RegisterListener(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// ListenerCount returns the number of registered listeners.
func (r *Receiver) ListenerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Dispatch offers timings to each listener in registration order and reports
// whether any recognised them. Each listener sees the frame from the start.
func (r *Receiver) Dispatch(timings []int32) bool {
	r.mu.RLock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, l := range listeners {
		if l.OnReceive(NewReceiveData(timings, r.tolerance)) {
			return true
		}
	}
	return false
}

// Publisher is the subset of the MQTT client a transmitter needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTTransmitter publishes raw frames as JSON to an IR blaster topic.
type MQTTTransmitter struct {
	id        string
	topic     string
	dutyCycle int
	pub       Publisher
}

// NewMQTTTransmitter creates a transmitter publishing to topic.
func NewMQTTTransmitter(id, topic string, dutyCycle int, pub Publisher) *MQTTTransmitter {
	return &MQTTTransmitter{id: id, topic: topic, dutyCycle: dutyCycle, pub: pub}
}

// ID returns the configured transmitter ID.
func (t *MQTTTransmitter) ID() string {
	return t.id
}

// Topic returns the topic frames are published to.
func (t *MQTTTransmitter) Topic() string {
	return t.topic
}

// FrameMessage is the payload exchanged with IR blasters and receivers.
type FrameMessage struct {
	CarrierFrequency uint32  `json:"carrier_frequency,omitempty"`
	DutyPercent      int     `json:"duty_percent,omitempty"`
	Timings          []int32 `json:"timings"`
}

// Transmit validates and publishes the frame.
func (t *MQTTTransmitter) Transmit(ctx context.Context, data TransmitData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(FrameMessage{
		CarrierFrequency: data.CarrierFrequency,
		DutyPercent:      t.dutyCycle,
		Timings:          data.Timings,
	})
	if err != nil {
		return fmt.Errorf("marshalling frame: %w", err)
	}
	if err := t.pub.Publish(t.topic, payload, 1, false); err != nil {
		return fmt.Errorf("publishing frame to %s: %w", t.topic, err)
	}
	return nil
}

// DecodeFrame parses a FrameMessage payload.
func DecodeFrame(payload []byte) (FrameMessage, error) {
	var msg FrameMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return FrameMessage{}, fmt.Errorf("%w: %w", ErrInvalidTimings, err)
	}
	if len(msg.Timings) == 0 {
		return FrameMessage{}, fmt.Errorf("%w: empty frame", ErrInvalidTimings)
	}
	return msg, nil
}
