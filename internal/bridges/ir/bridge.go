package ir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/climateir"
	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/device"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

const (
	// commandTimeout bounds a single transmit.
	commandTimeout = 5 * time.Second

	// persistTimeout bounds registry and history writes after a state change.
	persistTimeout = 5 * time.Second
)

// Logger defines the logging interface used by the Bridge.
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

// MQTTClient is the subset of the MQTT client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// DeviceRegistry persists the device catalogue and last known state.
// It is satisfied by *device.Registry. Optional.
type DeviceRegistry interface {
	SyncDevices(ctx context.Context, devices []device.Device) (device.SyncResult, error)
	GetDevice(ctx context.Context, id string) (*device.Device, error)
	SetDeviceState(ctx context.Context, id string, state device.State) error
}

// StateHistory records state snapshots. It is satisfied by
// *device.SQLiteStateHistoryRepository. Optional.
type StateHistory interface {
	RecordStateChange(ctx context.Context, deviceID string, state device.State, source string) error
}

// Telemetry writes time-series points. It is satisfied by *influxdb.Client.
// Optional.
type Telemetry interface {
	WriteClimateState(deviceID string, st climate.State)
	WriteIRFrame(remoteID, direction string, items int)
	WriteRoomTemperature(sensorID string, celsius float64)
}

// Options holds what a bridge is built from.
type Options struct {
	// Instances is the registry filled by a code generation run. Required.
	Instances *codegen.Registry

	// MQTT is the broker connection. Required.
	MQTT MQTTClient

	// Factories maps generated class names to unit constructors. Required.
	Factories map[string]climateir.Factory

	Devices   DeviceRegistry
	History   StateHistory
	Telemetry Telemetry
	Metrics   *MetricsCollector

	// RestoreState starts each unit from its last recorded state.
	RestoreState bool

	BridgeID       string
	Version        string
	HealthInterval time.Duration
	Logger         Logger
}

// unit is one live climate device.
//
// mu is held from a state change until that state has been published, so
// retained state, registry and history follow the order of changes.
type unit struct {
	id       string
	platform string
	inst     *codegen.Instance
	dev      *climateir.ClimateIR
	mu       sync.Mutex
}

type receiverBinding struct {
	rx    *remote.Receiver
	topic string
}

type sensorBinding struct {
	id    string
	topic string
	qos   byte
	units []*unit
}

// Bridge runs generated IR climate units over MQTT.
//
// The device topology is fixed at construction. Thread Safety: all methods
// are safe for concurrent use.
type Bridge struct {
	mqtt      MQTTClient
	topics    mqtt.Topics
	devices   DeviceRegistry
	history   StateHistory
	telemetry Telemetry
	metrics   *MetricsCollector
	restore   bool
	bridgeID  string
	health    *HealthReporter

	units        map[string]*unit
	unitOrder    []string
	transmitters map[string]remote.Transmitter
	receivers    []receiverBinding
	sensors      []sensorBinding

	commandsAccepted atomic.Uint64
	commandsFailed   atomic.Uint64
	framesSent       atomic.Uint64
	framesReceived   atomic.Uint64
	framesIgnored    atomic.Uint64

	ctx       context.Context
	ctxCancel context.CancelFunc
	stopOnce  sync.Once

	logger Logger
}

// NewBridge builds the live devices described by opts.Instances.
// Call Start to begin operation.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.Instances == nil {
		return nil, fmt.Errorf("instance registry is required")
	}
	if opts.MQTT == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Factories == nil {
		return nil, fmt.Errorf("factories are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		mqtt:         opts.MQTT,
		devices:      opts.Devices,
		history:      opts.History,
		telemetry:    opts.Telemetry,
		metrics:      opts.Metrics,
		restore:      opts.RestoreState,
		bridgeID:     opts.BridgeID,
		units:        make(map[string]*unit),
		transmitters: make(map[string]remote.Transmitter),
		ctx:          ctx,
		ctxCancel:    cancel,
		logger:       opts.Logger,
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	if b.bridgeID == "" {
		b.bridgeID = "ir-bridge"
	}

	b.buildTransmitters(opts.Instances)
	if err := b.buildUnits(opts.Instances, opts.Factories); err != nil {
		cancel()
		return nil, err
	}
	b.buildReceivers(opts.Instances)
	b.buildSensors(opts.Instances)

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  b.bridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTT,
		Stats:     b.Statistics,
	})
	b.health.SetLogger(b.logger)
	b.health.SetDeviceCount(len(b.units))
	if b.metrics != nil {
		b.metrics.setDevices(len(b.units))
	}

	return b, nil
}

func (b *Bridge) buildTransmitters(reg *codegen.Registry) {
	for _, inst := range reg.ByClass(remote.TransmitterClass) {
		rec := schema.Record(inst.Config)
		id := inst.ID.Name
		tx := remote.NewMQTTTransmitter(id, remote.TransmitterTopic(id, rec), rec.Int(remote.KeyDutyPercent), b.mqtt)
		b.transmitters[id] = &observedTransmitter{MQTTTransmitter: tx, bridge: b}
	}
}

func (b *Bridge) buildUnits(reg *codegen.Registry, factories map[string]climateir.Factory) error {
	for _, inst := range reg.ByClass(climateir.Class) {
		class := inst.Class().FullName()
		factory, ok := factories[class]
		if !ok {
			return fmt.Errorf("%w: %s (%s)", ErrNoFactory, class, inst.ID.Name)
		}
		dev := factory()
		dev.SetLogger(b.logger)
		if err := climateir.Configure(dev, inst, b); err != nil {
			return fmt.Errorf("configuring %s: %w", inst.ID.Name, err)
		}
		u := &unit{id: inst.ID.Name, platform: platformOf(inst.Class()), inst: inst, dev: dev}
		b.units[u.id] = u
		b.unitOrder = append(b.unitOrder, u.id)
	}
	return nil
}

func (b *Bridge) buildReceivers(reg *codegen.Registry) {
	for _, inst := range reg.ByClass(remote.ReceiverClass) {
		rec := schema.Record(inst.Config)
		rx := remote.NewReceiver(inst.ID.Name, rec.Int(remote.KeyTolerance))
		for _, target := range climateir.Listeners(inst) {
			if u, ok := b.units[target.ID.Name]; ok {
				rx.RegisterListener(&unitListener{unit: u, bridge: b})
			}
		}
		b.receivers = append(b.receivers, receiverBinding{rx: rx, topic: remote.ReceiverTopic(inst.ID.Name, rec)})
	}
}

func (b *Bridge) buildSensors(reg *codegen.Registry) {
	for _, inst := range reg.ByClass(remote.SubscribeSensorClass) {
		rec := schema.Record(inst.Config)
		s := sensorBinding{
			id:    inst.ID.Name,
			topic: rec.String(remote.KeyTopic),
			qos:   byte(rec.Int(remote.KeyQoS)), //nolint:gosec // validated to 0..2
		}
		for _, id := range b.unitOrder {
			if u := b.units[id]; u.dev.SensorID() == s.id {
				s.units = append(s.units, u)
			}
		}
		b.sensors = append(b.sensors, s)
	}
}

// platformOf returns the namespace a platform's class is declared in,
// e.g. "mbishi" for esphome::mbishi::MbishiClimate.
func platformOf(c *codegen.Class) string {
	parts := strings.Split(c.FullName(), "::")
	if len(parts) < 2 {
		return c.Name()
	}
	return parts[len(parts)-2]
}

// Transmitter implements climateir.Resolver.
func (b *Bridge) Transmitter(id string) (remote.Transmitter, bool) {
	tx, ok := b.transmitters[id]
	return tx, ok
}

// Start registers the units, sets their initial state and subscribes to
// commands, receivers and sensors.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logger.Warn("failed to publish starting status", "error", err)
	}

	if b.devices != nil {
		result, err := b.devices.SyncDevices(ctx, b.catalogue())
		if err != nil {
			return fmt.Errorf("syncing device registry: %w", err)
		}
		b.logger.Info("device registry synced",
			"added", result.Added,
			"updated", result.Updated,
			"removed", result.Removed)
	}

	for _, id := range b.unitOrder {
		u := b.units[id]
		u.mu.Lock()
		u.dev.Setup(b.restoredState(ctx, u))
		b.publishState(u.id, u.dev.State(), device.StateHistorySourceSetup)
		u.mu.Unlock()
	}

	if err := b.mqtt.Subscribe(b.topics.AllCommands(), 1, b.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	for _, r := range b.receivers {
		if err := b.mqtt.Subscribe(r.topic, 0, b.receiveHandler(r.rx)); err != nil {
			return fmt.Errorf("subscribe to receiver %s: %w", r.rx.ID(), err)
		}
	}
	for _, s := range b.sensors {
		if err := b.mqtt.Subscribe(s.topic, s.qos, b.sensorHandler(s)); err != nil {
			return fmt.Errorf("subscribe to sensor %s: %w", s.id, err)
		}
	}

	b.health.Start(ctx)
	if err := b.health.PublishNow(); err != nil {
		b.logger.Warn("failed to publish health", "error", err)
	}
	if b.metrics != nil {
		b.metrics.setConnected(b.mqtt.IsConnected())
	}

	b.logger.Info("bridge started",
		"bridge_id", b.bridgeID,
		"devices", len(b.units),
		"receivers", len(b.receivers),
		"sensors", len(b.sensors))
	return nil
}

// Stop drops the bridge's subscriptions, cancels in-flight commands and
// stops health reporting.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		for _, topic := range b.subscribedTopics() {
			if err := b.mqtt.Unsubscribe(topic); err != nil {
				b.logger.Debug("unsubscribe failed", "topic", topic, "error", err)
			}
		}
		b.ctxCancel()
		b.health.Stop()
		b.logger.Info("bridge stopped")
	})
}

func (b *Bridge) subscribedTopics() []string {
	topics := []string{b.topics.AllCommands()}
	for _, r := range b.receivers {
		topics = append(topics, r.topic)
	}
	for _, s := range b.sensors {
		topics = append(topics, s.topic)
	}
	return topics
}

// catalogue describes the units for the device registry.
func (b *Bridge) catalogue() []device.Device {
	out := make([]device.Device, 0, len(b.unitOrder))
	for _, id := range b.unitOrder {
		u := b.units[id]
		out = append(out, device.Device{
			ID:       u.id,
			Name:     u.dev.Name(),
			Platform: u.platform,
			Class:    u.inst.Class().FullName(),
			Config:   device.ConfigFromRecord(u.inst.Config),
			Traits:   u.dev.Traits(),
		})
	}
	return out
}

func (b *Bridge) restoredState(ctx context.Context, u *unit) *climate.State {
	if !b.restore || b.devices == nil {
		return nil
	}
	d, err := b.devices.GetDevice(ctx, u.id)
	if err != nil {
		b.logger.Warn("no device record to restore from", "device_id", u.id, "error", err)
		return nil
	}
	if len(d.State) == 0 {
		return nil
	}
	st, err := d.ClimateState()
	if err != nil {
		b.logger.Warn("stored state unusable", "device_id", u.id, "error", err)
		return nil
	}
	return &st
}

// DeviceIDs returns the IDs of the managed units in declaration order.
func (b *Bridge) DeviceIDs() []string {
	return append([]string(nil), b.unitOrder...)
}

// State returns the current state of a unit.
func (b *Bridge) State(deviceID string) (climate.State, bool) {
	u, ok := b.units[deviceID]
	if !ok {
		return climate.State{}, false
	}
	return u.dev.State(), true
}

// Control applies call to a unit and transmits the result.
// It returns ErrDeviceNotConfigured for an unknown device, a climate
// validation error for a call the unit cannot take, or the transmit error.
func (b *Bridge) Control(ctx context.Context, deviceID string, call climate.Call) (climate.State, error) {
	u, ok := b.units[deviceID]
	if !ok {
		return climate.State{}, fmt.Errorf("%w: %s", ErrDeviceNotConfigured, deviceID)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	u.mu.Lock()
	defer u.mu.Unlock()

	st, err := u.dev.Control(ctx, call)
	if err != nil {
		b.commandsFailed.Add(1)
		if b.metrics != nil {
			b.metrics.observeCommand(deviceID, AckFailed)
		}
		return climate.State{}, err
	}

	b.commandsAccepted.Add(1)
	if b.metrics != nil {
		b.metrics.observeCommand(deviceID, AckAccepted)
	}
	b.publishState(deviceID, st, device.StateHistorySourceCommand)
	return st, nil
}

// handleCommand processes graylogic/command/ir/{device_id}.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	deviceID, ok := b.topics.DeviceFromTopic(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidCommand, topic)
	}

	cmd, err := ParseCommand(deviceID, payload)
	if err != nil {
		b.publishAck(NewAckError(CommandMessage{DeviceID: deviceID}, ErrCodeInvalidCommand, err.Error()))
		return err
	}

	b.logger.Info("received command",
		"command_id", cmd.ID,
		"device_id", cmd.DeviceID,
		"source", cmd.Source)

	st, err := b.Control(b.ctx, deviceID, cmd.Call)
	if err != nil {
		b.publishAck(NewAckError(cmd, errorCode(err), err.Error()))
		return fmt.Errorf("command %s: %w", cmd.ID, err)
	}
	b.publishAck(NewAckMessage(cmd, st))
	return nil
}

// errorCode maps a Control error to an acknowledgement code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrDeviceNotConfigured):
		return ErrCodeNotConfigured
	case errors.Is(err, climate.ErrEmptyCall),
		errors.Is(err, climate.ErrInvalidMode),
		errors.Is(err, climate.ErrInvalidFanMode),
		errors.Is(err, climate.ErrInvalidSwingMode),
		errors.Is(err, climate.ErrInvalidTemperature):
		return ErrCodeInvalidParameters
	default:
		return ErrCodeTransmitFailed
	}
}

func (b *Bridge) publishAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logger.Error("failed to marshal ack", "error", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Ack(ack.DeviceID), payload, 1, false); err != nil {
		b.logger.Error("failed to publish ack", "device_id", ack.DeviceID, "error", err)
	}
}

// receiveHandler dispatches captured frames to the receiver's listeners.
func (b *Bridge) receiveHandler(rx *remote.Receiver) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		msg, err := remote.DecodeFrame(payload)
		if err != nil {
			return fmt.Errorf("receiver %s: %w", rx.ID(), err)
		}
		if rx.Dispatch(msg.Timings) {
			b.framesReceived.Add(1)
			b.recordFrame(rx.ID(), influxdb.DirectionRX, len(msg.Timings))
			return nil
		}
		b.framesIgnored.Add(1)
		if b.metrics != nil {
			b.metrics.observeIgnored(rx.ID())
		}
		b.logger.Debug("ir frame not recognised", "receiver_id", rx.ID(), "timings", len(msg.Timings))
		return nil
	}
}

// sensorHandler feeds room temperature readings to the units using the sensor.
func (b *Bridge) sensorHandler(s sensorBinding) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		v, err := ParseReading(payload)
		if err != nil {
			return fmt.Errorf("sensor %s: %w", s.id, err)
		}
		if b.metrics != nil {
			b.metrics.observeReading(s.id)
		}
		if b.telemetry != nil {
			b.telemetry.WriteRoomTemperature(s.id, v)
		}
		for _, u := range s.units {
			u.mu.Lock()
			u.dev.SetCurrentTemperature(v)
			b.publishState(u.id, u.dev.State(), device.StateHistorySourceSensor)
			u.mu.Unlock()
		}
		return nil
	}
}

// publishState fans a state change out to MQTT, the registry, history,
// telemetry and metrics. Failures are logged; the unit's state stands.
func (b *Bridge) publishState(deviceID string, st climate.State, source string) {
	payload, err := json.Marshal(NewStateMessage(deviceID, st, source))
	if err != nil {
		b.logger.Error("failed to marshal state", "device_id", deviceID, "error", err)
	} else if err := b.mqtt.Publish(b.topics.State(deviceID), payload, 1, true); err != nil {
		b.logger.Warn("failed to publish state", "device_id", deviceID, "error", err)
	}

	if b.metrics != nil {
		b.metrics.ObserveState(deviceID, st)
	}
	if b.telemetry != nil {
		b.telemetry.WriteClimateState(deviceID, st)
	}

	// Sensor updates change only the room temperature; the registry and
	// history keep the controllable state.
	if source == device.StateHistorySourceSensor {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, persistTimeout)
	defer cancel()
	state := device.StateFromClimate(st)
	if b.devices != nil {
		if err := b.devices.SetDeviceState(ctx, deviceID, state); err != nil {
			b.logger.Warn("failed to update device registry", "device_id", deviceID, "error", err)
		}
	}
	if b.history != nil {
		if err := b.history.RecordStateChange(ctx, deviceID, state, source); err != nil {
			b.logger.Warn("failed to record state history", "device_id", deviceID, "error", err)
		}
	}
}

func (b *Bridge) recordFrame(remoteID, direction string, items int) {
	if b.metrics != nil {
		b.metrics.observeFrame(remoteID, direction)
	}
	if b.telemetry != nil {
		b.telemetry.WriteIRFrame(remoteID, direction, items)
	}
}

// Statistics returns traffic counters since the bridge was created.
func (b *Bridge) Statistics() BridgeStatistics {
	return BridgeStatistics{
		CommandsAccepted: b.commandsAccepted.Load(),
		CommandsFailed:   b.commandsFailed.Load(),
		FramesSent:       b.framesSent.Load(),
		FramesReceived:   b.framesReceived.Load(),
		FramesIgnored:    b.framesIgnored.Load(),
	}
}

// SetConnected records a broker connection change and republishes health.
// Wire it to the MQTT client's connect and disconnect callbacks.
func (b *Bridge) SetConnected(up bool) {
	if b.metrics != nil {
		b.metrics.setConnected(up)
	}
	if up {
		if err := b.health.PublishNow(); err != nil {
			b.logger.Warn("failed to publish health", "error", err)
		}
	}
}

// Health returns the current health message without publishing it.
func (b *Bridge) Health() HealthMessage {
	status, reason := b.health.determineStatus()
	return b.health.Message(status, reason)
}

// observedTransmitter counts frames handed to an IR blaster.
type observedTransmitter struct {
	*remote.MQTTTransmitter
	bridge *Bridge
}

func (t *observedTransmitter) Transmit(ctx context.Context, data remote.TransmitData) error {
	if err := t.MQTTTransmitter.Transmit(ctx, data); err != nil {
		return err
	}
	t.bridge.framesSent.Add(1)
	t.bridge.recordFrame(t.ID(), influxdb.DirectionTX, data.Len())
	return nil
}

// unitListener publishes the state a unit decodes from its own remote.
type unitListener struct {
	unit   *unit
	bridge *Bridge
}

func (l *unitListener) OnReceive(data *remote.ReceiveData) bool {
	l.unit.mu.Lock()
	defer l.unit.mu.Unlock()
	if !l.unit.dev.OnReceive(data) {
		return false
	}
	l.bridge.publishState(l.unit.id, l.unit.dev.State(), device.StateHistorySourceIR)
	return true
}
