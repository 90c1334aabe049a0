package climateir

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

// Logger defines the logging interface used by ClimateIR.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DefaultTargetTemperature is used when neither a restored state nor a room
// reading is available.
const DefaultTargetTemperature = 24.0

// Protocol converts between climate state and a vendor's IR frames.
type Protocol interface {
	// Transmit encodes the full state as one frame.
	Transmit(st climate.State) remote.TransmitData

	// Receive decodes a frame sent by the vendor's remote control.
	// It reports false when the frame is not the vendor's.
	Receive(data *remote.ReceiveData) (climate.State, bool)
}

// Options are the fixed capabilities of a vendor's units.
type Options struct {
	MinTemperature  float64
	MaxTemperature  float64
	TemperatureStep float64
	SupportsDry     bool
	SupportsFanOnly bool
	FanModes        []climate.FanMode
	SwingModes      []climate.SwingMode
}

// StateCallback is invoked with the new state after every change.
type StateCallback func(id string, st climate.State)

// ClimateIR is a live IR-controlled unit.
//
// IR is one-way: the state is what was last sent or last seen from the
// vendor's remote, not a reading from the unit.
//
// Thread Safety: all methods are safe for concurrent use.
type ClimateIR struct {
	proto Protocol
	opts  Options

	mu           sync.Mutex
	id           string
	name         string
	supportsCool bool
	supportsHeat bool
	sensorID     string
	transmitter  remote.Transmitter
	state        climate.State
	callbacks    []StateCallback
	logger       Logger
}

// New creates a unit that speaks proto. Cool and heat are supported until
// configured otherwise.
func New(proto Protocol, opts Options) *ClimateIR {
	return &ClimateIR{
		proto:        proto,
		opts:         opts,
		supportsCool: true,
		supportsHeat: true,
		state:        climate.State{Mode: climate.ModeOff, CurrentTemperature: math.NaN()},
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger.
func (c *ClimateIR) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// SetID sets the configured identifier.
func (c *ClimateIR) SetID(id string) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// ID returns the configured identifier.
func (c *ClimateIR) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// SetName sets the display name.
func (c *ClimateIR) SetName(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

// Name returns the display name.
func (c *ClimateIR) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// SetSupportsCool enables or disables cool mode.
func (c *ClimateIR) SetSupportsCool(v bool) {
	c.mu.Lock()
	c.supportsCool = v
	c.mu.Unlock()
}

// SetSupportsHeat enables or disables heat mode.
func (c *ClimateIR) SetSupportsHeat(v bool) {
	c.mu.Lock()
	c.supportsHeat = v
	c.mu.Unlock()
}

// SetSensor attaches the room temperature sensor with the given ID.
func (c *ClimateIR) SetSensor(id string) {
	c.mu.Lock()
	c.sensorID = id
	c.mu.Unlock()
}

// SensorID returns the attached sensor's ID, or "".
func (c *ClimateIR) SensorID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensorID
}

// SetTransmitter sets where frames are sent.
func (c *ClimateIR) SetTransmitter(t remote.Transmitter) {
	c.mu.Lock()
	c.transmitter = t
	c.mu.Unlock()
}

// AddStateCallback registers fn to run after every state change.
func (c *ClimateIR) AddStateCallback(fn StateCallback) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}

// Traits returns what the unit accepts.
func (c *ClimateIR) Traits() climate.Traits {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.traitsLocked()
}

func (c *ClimateIR) traitsLocked() climate.Traits {
	modes := []climate.Mode{climate.ModeOff, climate.ModeAuto}
	if c.supportsCool {
		modes = append(modes, climate.ModeCool)
	}
	if c.supportsHeat {
		modes = append(modes, climate.ModeHeat)
	}
	if c.opts.SupportsDry {
		modes = append(modes, climate.ModeDry)
	}
	if c.opts.SupportsFanOnly {
		modes = append(modes, climate.ModeFanOnly)
	}
	return climate.Traits{
		MinTemperature:             c.opts.MinTemperature,
		MaxTemperature:             c.opts.MaxTemperature,
		TemperatureStep:            c.opts.TemperatureStep,
		Modes:                      modes,
		FanModes:                   append([]climate.FanMode(nil), c.opts.FanModes...),
		SwingModes:                 append([]climate.SwingMode(nil), c.opts.SwingModes...),
		SupportsCurrentTemperature: c.sensorID != "",
	}
}

// State returns the current state.
func (c *ClimateIR) State() climate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Setup initialises the state. A restored state that still fits the traits
// is kept; otherwise the unit starts off with the target at the room
// temperature, or DefaultTargetTemperature without a reading.
// Setup does not transmit.
func (c *ClimateIR) Setup(restored *climate.State) {
	c.mu.Lock()
	traits := c.traitsLocked()
	current := c.state.CurrentTemperature

	if restored != nil && fitsTraits(*restored, traits) {
		c.state = *restored
		c.state.CurrentTemperature = current
	} else {
		target := DefaultTargetTemperature
		if !math.IsNaN(current) {
			target = current
		}
		c.state = climate.State{
			Mode:               climate.ModeOff,
			TargetTemperature:  math.Round(traits.ClampTemperature(target)),
			FanMode:            firstFan(traits),
			SwingMode:          firstSwing(traits),
			CurrentTemperature: current,
		}
	}
	st, id := c.state, c.id
	c.mu.Unlock()

	c.notify(id, st)
}

func fitsTraits(st climate.State, t climate.Traits) bool {
	call := climate.Call{Mode: &st.Mode, TargetTemperature: &st.TargetTemperature}
	if len(t.FanModes) > 0 {
		call.FanMode = &st.FanMode
	}
	if len(t.SwingModes) > 0 {
		call.SwingMode = &st.SwingMode
	}
	return call.Validate(t) == nil
}

func firstFan(t climate.Traits) climate.FanMode {
	if t.SupportsFanMode(climate.FanAuto) || len(t.FanModes) == 0 {
		return climate.FanAuto
	}
	return t.FanModes[0]
}

func firstSwing(t climate.Traits) climate.SwingMode {
	if t.SupportsSwingMode(climate.SwingOff) || len(t.SwingModes) == 0 {
		return climate.SwingOff
	}
	return t.SwingModes[0]
}

// Control validates call, applies it and transmits the resulting state.
// The state only changes when the frame was handed to the transmitter.
func (c *ClimateIR) Control(ctx context.Context, call climate.Call) (climate.State, error) {
	c.mu.Lock()
	traits := c.traitsLocked()
	if err := call.Validate(traits); err != nil {
		c.mu.Unlock()
		return climate.State{}, err
	}
	if c.transmitter == nil {
		c.mu.Unlock()
		return climate.State{}, fmt.Errorf("%w: %s", remote.ErrNoTransmitter, c.id)
	}

	next := call.Apply(c.state, traits)
	data := c.proto.Transmit(next)
	if err := c.transmitter.Transmit(ctx, data); err != nil {
		c.mu.Unlock()
		return climate.State{}, fmt.Errorf("transmitting to %s: %w", c.id, err)
	}
	c.state = next
	id, logger := c.id, c.logger
	c.mu.Unlock()

	logger.Debug("climate state transmitted",
		"device_id", id,
		"mode", next.Mode,
		"target_temperature", next.TargetTemperature,
		"fan_mode", next.FanMode,
		"swing_mode", next.SwingMode,
		"timings", data.Len(),
	)
	c.notify(id, next)
	return next, nil
}

// OnReceive decodes a frame from the vendor's remote and adopts its state.
// A decoded target outside the traits is clamped, so the next transmitted
// frame carries the temperature the state reports.
// It implements remote.Listener.
func (c *ClimateIR) OnReceive(data *remote.ReceiveData) bool {
	st, ok := c.proto.Receive(data)
	if !ok {
		return false
	}

	c.mu.Lock()
	st.TargetTemperature = math.Round(c.traitsLocked().ClampTemperature(st.TargetTemperature))
	st.CurrentTemperature = c.state.CurrentTemperature
	c.state = st
	id, logger := c.id, c.logger
	c.mu.Unlock()

	logger.Info("climate state received from remote", "device_id", id, "mode", st.Mode)
	c.notify(id, st)
	return true
}

// SetCurrentTemperature records a room temperature reading.
func (c *ClimateIR) SetCurrentTemperature(t float64) {
	c.mu.Lock()
	c.state.CurrentTemperature = t
	st, id := c.state, c.id
	c.mu.Unlock()

	c.notify(id, st)
}

func (c *ClimateIR) notify(id string, st climate.State) {
	c.mu.Lock()
	callbacks := make([]StateCallback, len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(id, st)
	}
}
