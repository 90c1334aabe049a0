package ir

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/climateir"
	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/device"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-irclimate/internal/mbishi"
	"github.com/nerrad567/gray-logic-irclimate/internal/platforms"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

const testDevices = `
climate:
  - platform: mbishi
    id: ac1
    name: Living room
    receiver_id: ir_rx
    sensor: room_temp

remote_transmitter:
  id: ir_tx
  pin: GPIO14

remote_receiver:
  id: ir_rx
  pin: 5

sensor:
  - platform: mqtt_subscribe
    id: room_temp
    name: Living room temperature
    topic: zigbee2mqtt/living_room/temperature
`

const (
	commandTopic  = "graylogic/command/ir/ac1"
	stateTopic    = "graylogic/state/ir/ac1"
	ackTopic      = "graylogic/ack/ir/ac1"
	transmitTopic = "graylogic/ir/ir_tx/transmit"
	receiveTopic  = "graylogic/ir/ir_rx/receive"
	sensorTopic   = "zigbee2mqtt/living_room/temperature"
)

// publishedMessage records a single publish call.
type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// mockMQTT is a broker-free MQTTClient.
type mockMQTT struct {
	mu         sync.Mutex
	published  []publishedMessage
	handlers   map[string]mqtt.MessageHandler
	connected  bool
	publishErr error
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{handlers: make(map[string]mqtt.MessageHandler), connected: true}
}

func (m *mockMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (m *mockMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, topic)
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) deliver(t *testing.T, topic string, payload []byte) error {
	t.Helper()
	m.mu.Lock()
	h, ok := m.handlers[topic]
	if !ok {
		// Wildcard command subscription.
		h, ok = m.handlers[mqtt.Topics{}.AllCommands()]
	}
	m.mu.Unlock()
	if !ok {
		t.Fatalf("no handler subscribed for %s", topic)
	}
	return h(topic, payload)
}

func (m *mockMQTT) on(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedMessage
	for _, p := range m.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockMQTT) last(t *testing.T, topic string) publishedMessage {
	t.Helper()
	msgs := m.on(topic)
	if len(msgs) == 0 {
		t.Fatalf("nothing published on %s", topic)
	}
	return msgs[len(msgs)-1]
}

// mockDevices records registry calls.
type mockDevices struct {
	mu      sync.Mutex
	synced  []device.Device
	stored  map[string]*device.Device
	updates map[string][]device.State
	syncErr error
}

func newMockDevices() *mockDevices {
	return &mockDevices{stored: make(map[string]*device.Device), updates: make(map[string][]device.State)}
}

func (m *mockDevices) SyncDevices(_ context.Context, devices []device.Device) (device.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncErr != nil {
		return device.SyncResult{}, m.syncErr
	}
	m.synced = devices
	return device.SyncResult{Added: len(devices)}, nil
}

func (m *mockDevices) GetDevice(_ context.Context, id string) (*device.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.stored[id]
	if !ok {
		return nil, device.ErrDeviceNotFound
	}
	return d.DeepCopy(), nil
}

func (m *mockDevices) SetDeviceState(_ context.Context, id string, state device.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[id] = append(m.updates[id], state)
	return nil
}

// mockHistory records state history sources.
type mockHistory struct {
	mu      sync.Mutex
	sources []string
}

func (m *mockHistory) RecordStateChange(_ context.Context, _ string, _ device.State, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
	return nil
}

// mockTelemetry records InfluxDB writes.
type mockTelemetry struct {
	mu       sync.Mutex
	states   int
	frames   []string
	readings []float64
}

func (m *mockTelemetry) WriteClimateState(string, climate.State) {
	m.mu.Lock()
	m.states++
	m.mu.Unlock()
}

func (m *mockTelemetry) WriteIRFrame(remoteID, direction string, _ int) {
	m.mu.Lock()
	m.frames = append(m.frames, remoteID+"/"+direction)
	m.mu.Unlock()
}

func (m *mockTelemetry) WriteRoomTemperature(_ string, celsius float64) {
	m.mu.Lock()
	m.readings = append(m.readings, celsius)
	m.mu.Unlock()
}

func buildInstances(t *testing.T, src string) *codegen.Registry {
	t.Helper()
	catalog, err := platforms.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	doc, err := component.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reg := codegen.NewRegistry()
	if _, err := component.Build(catalog, doc, reg); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

type testBridge struct {
	*Bridge
	mqtt      *mockMQTT
	devices   *mockDevices
	history   *mockHistory
	telemetry *mockTelemetry
	metrics   *MetricsCollector
}

func newTestBridge(t *testing.T, restore bool, configure func(*mockDevices)) *testBridge {
	t.Helper()

	tb := &testBridge{
		mqtt:      newMockMQTT(),
		devices:   newMockDevices(),
		history:   &mockHistory{},
		telemetry: &mockTelemetry{},
		metrics:   NewMetricsCollector(),
	}
	if configure != nil {
		configure(tb.devices)
	}

	b, err := NewBridge(Options{
		Instances:    buildInstances(t, testDevices),
		MQTT:         tb.mqtt,
		Factories:    platforms.Factories(),
		Devices:      tb.devices,
		History:      tb.history,
		Telemetry:    tb.telemetry,
		Metrics:      tb.metrics,
		RestoreState: restore,
		Version:      "test",
	})
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}
	tb.Bridge = b

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(b.Stop)
	return tb
}

func decodeState(t *testing.T, p publishedMessage) StateMessage {
	t.Helper()
	var msg StateMessage
	if err := json.Unmarshal(p.payload, &msg); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	return msg
}

func decodeAck(t *testing.T, p publishedMessage) AckMessage {
	t.Helper()
	var ack AckMessage
	if err := json.Unmarshal(p.payload, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	return ack
}

func TestNewBridge_RequiredOptions(t *testing.T) {
	reg := codegen.NewRegistry()
	tests := []struct {
		name string
		opts Options
	}{
		{"no instances", Options{MQTT: newMockMQTT(), Factories: platforms.Factories()}},
		{"no mqtt", Options{Instances: reg, Factories: platforms.Factories()}},
		{"no factories", Options{Instances: reg, MQTT: newMockMQTT()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBridge(tt.opts); err == nil {
				t.Error("NewBridge() error = nil, want error")
			}
		})
	}
}

func TestNewBridge_UnknownClass(t *testing.T) {
	_, err := NewBridge(Options{
		Instances: buildInstances(t, testDevices),
		MQTT:      newMockMQTT(),
		Factories: map[string]climateir.Factory{},
	})
	if !errors.Is(err, ErrNoFactory) {
		t.Errorf("NewBridge() error = %v, want ErrNoFactory", err)
	}
}

func TestBridge_StartSetsUpUnits(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	for _, topic := range []string{mqtt.Topics{}.AllCommands(), receiveTopic, sensorTopic} {
		if _, ok := tb.mqtt.handlers[topic]; !ok {
			t.Errorf("not subscribed to %s", topic)
		}
	}

	if ids := tb.DeviceIDs(); len(ids) != 1 || ids[0] != "ac1" {
		t.Fatalf("DeviceIDs() = %v, want [ac1]", ids)
	}

	st := tb.last(t, stateTopic)
	if !st.retained || st.qos != 1 {
		t.Errorf("state publish retained=%v qos=%d, want retained qos 1", st.retained, st.qos)
	}
	msg := decodeState(t, st)
	if msg.State.Mode != climate.ModeOff || msg.Source != device.StateHistorySourceSetup {
		t.Errorf("initial state = %+v source %q, want off from setup", msg.State, msg.Source)
	}
	if msg.State.TargetTemperature != 24 {
		t.Errorf("initial target = %v, want 24", msg.State.TargetTemperature)
	}

	if len(tb.devices.synced) != 1 {
		t.Fatalf("synced %d devices, want 1", len(tb.devices.synced))
	}
	d := tb.devices.synced[0]
	if d.ID != "ac1" || d.Name != "Living room" || d.Platform != "mbishi" {
		t.Errorf("synced device = %+v", d)
	}
	if d.Class != mbishi.Class.FullName() {
		t.Errorf("synced class = %q, want %q", d.Class, mbishi.Class.FullName())
	}
	if !d.Traits.SupportsCurrentTemperature {
		t.Error("synced traits should report the room sensor")
	}
	if d.Config["receiver_id"] != "ir_rx" {
		t.Errorf("synced config receiver_id = %v, want ir_rx", d.Config["receiver_id"])
	}

	if len(tb.mqtt.on(transmitTopic)) != 0 {
		t.Error("setup must not transmit")
	}
}

func (tb *testBridge) last(t *testing.T, topic string) publishedMessage {
	t.Helper()
	return tb.mqtt.last(t, topic)
}

func TestBridge_CommandTransmitsAndAcks(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	payload := []byte(`{"id":"cmd-1","call":{"mode":"cool","target_temperature":22,"fan_mode":"high"},"source":"api"}`)
	if err := tb.mqtt.deliver(t, commandTopic, payload); err != nil {
		t.Fatalf("command handler error = %v", err)
	}

	frame := tb.last(t, transmitTopic)
	msg, err := remote.DecodeFrame(frame.payload)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	want := mbishi.Protocol{}.Transmit(climate.State{
		Mode: climate.ModeCool, TargetTemperature: 22, FanMode: climate.FanHigh, SwingMode: climate.SwingOff,
	})
	if len(msg.Timings) != want.Len() {
		t.Errorf("transmitted %d timings, want %d", len(msg.Timings), want.Len())
	}
	if msg.DutyPercent != 50 {
		t.Errorf("DutyPercent = %d, want 50", msg.DutyPercent)
	}

	ack := decodeAck(t, tb.last(t, ackTopic))
	if ack.CommandID != "cmd-1" || ack.Status != AckAccepted || ack.Protocol != Protocol {
		t.Errorf("ack = %+v, want accepted cmd-1", ack)
	}
	if ack.State == nil || ack.State.Mode != climate.ModeCool {
		t.Errorf("ack state = %+v, want cool", ack.State)
	}

	state := decodeState(t, tb.last(t, stateTopic))
	if state.State.TargetTemperature != 22 || state.Source != device.StateHistorySourceCommand {
		t.Errorf("state = %+v source %q", state.State, state.Source)
	}

	if got := tb.devices.updates["ac1"]; len(got) != 2 || got[1]["mode"] != "cool" {
		t.Errorf("registry updates = %v, want setup then cool", got)
	}
	if got := tb.history.sources; len(got) != 2 || got[1] != device.StateHistorySourceCommand {
		t.Errorf("history sources = %v", got)
	}
	if got := tb.telemetry.frames; len(got) != 1 || got[0] != "ir_tx/tx" {
		t.Errorf("telemetry frames = %v, want [ir_tx/tx]", got)
	}
	if got := testutil.ToFloat64(tb.metrics.commands.WithLabelValues("ac1", "accepted")); got != 1 {
		t.Errorf("accepted commands metric = %v, want 1", got)
	}
	if got := testutil.ToFloat64(tb.metrics.mode.WithLabelValues("ac1", "cool")); got != 1 {
		t.Errorf("mode metric = %v, want 1", got)
	}
	if stats := tb.Statistics(); stats.CommandsAccepted != 1 || stats.FramesSent != 1 {
		t.Errorf("Statistics() = %+v", stats)
	}
}

func TestBridge_CommandFailures(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		wantCode string
	}{
		{"malformed json", commandTopic, `{"call":`, ErrCodeInvalidCommand},
		{"unsupported mode", commandTopic, `{"call":{"mode":"turbo"}}`, ErrCodeInvalidParameters},
		{"temperature out of range", commandTopic, `{"call":{"target_temperature":40}}`, ErrCodeInvalidParameters},
		{"empty call", commandTopic, `{"call":{}}`, ErrCodeInvalidParameters},
		{"unknown device", "graylogic/command/ir/ghost", `{"call":{"mode":"cool"}}`, ErrCodeNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBridge(t, false, nil)

			if err := tb.mqtt.deliver(t, tt.topic, []byte(tt.payload)); err == nil {
				t.Error("handler error = nil, want error")
			}

			deviceID, _ := mqtt.Topics{}.DeviceFromTopic(tt.topic)
			ack := decodeAck(t, tb.last(t, mqtt.Topics{}.Ack(deviceID)))
			if ack.Status != AckFailed || ack.Error == nil || ack.Error.Code != tt.wantCode {
				t.Errorf("ack = %+v, want failed %s", ack, tt.wantCode)
			}
			if len(tb.mqtt.on(transmitTopic)) != 0 {
				t.Error("failed command must not transmit")
			}
			if st, _ := tb.State("ac1"); st.Mode != climate.ModeOff {
				t.Errorf("state changed to %s", st.Mode)
			}
		})
	}
}

func TestBridge_TransmitFailureKeepsState(t *testing.T) {
	tb := newTestBridge(t, false, nil)
	tb.mqtt.publishErr = errors.New("broker gone")

	_, err := tb.Control(context.Background(), "ac1", climate.Call{Mode: modePtr(climate.ModeHeat)})
	if err == nil {
		t.Fatal("Control() error = nil, want transmit error")
	}
	if errorCode(err) != ErrCodeTransmitFailed {
		t.Errorf("errorCode() = %s, want %s", errorCode(err), ErrCodeTransmitFailed)
	}
	if st, _ := tb.State("ac1"); st.Mode != climate.ModeOff {
		t.Errorf("state = %s after failed transmit, want off", st.Mode)
	}
	if stats := tb.Statistics(); stats.CommandsFailed != 1 {
		t.Errorf("CommandsFailed = %d, want 1", stats.CommandsFailed)
	}
}

func TestBridge_ReceivedFrameUpdatesState(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	data := mbishi.Protocol{}.Transmit(climate.State{
		Mode: climate.ModeHeat, TargetTemperature: 25, FanMode: climate.FanAuto, SwingMode: climate.SwingOff,
	})
	payload, err := json.Marshal(remote.FrameMessage{Timings: data.Timings})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := tb.mqtt.deliver(t, receiveTopic, payload); err != nil {
		t.Fatalf("receive handler error = %v", err)
	}

	st, ok := tb.State("ac1")
	if !ok || st.Mode != climate.ModeHeat || st.TargetTemperature != 25 {
		t.Errorf("State() = %+v, want heat at 25", st)
	}
	msg := decodeState(t, tb.last(t, stateTopic))
	if msg.Source != device.StateHistorySourceIR {
		t.Errorf("state source = %q, want ir", msg.Source)
	}
	if stats := tb.Statistics(); stats.FramesReceived != 1 {
		t.Errorf("FramesReceived = %d, want 1", stats.FramesReceived)
	}
	if len(tb.mqtt.on(transmitTopic)) != 0 {
		t.Error("a received frame must not be echoed")
	}
}

func TestBridge_UnrecognisedFrame(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	if err := tb.mqtt.deliver(t, receiveTopic, []byte(`{"timings":[9000,-4500,560,-560,560]}`)); err != nil {
		t.Fatalf("receive handler error = %v", err)
	}
	if stats := tb.Statistics(); stats.FramesIgnored != 1 || stats.FramesReceived != 0 {
		t.Errorf("Statistics() = %+v, want one ignored frame", stats)
	}
	if got := testutil.ToFloat64(tb.metrics.framesIgnored.WithLabelValues("ir_rx")); got != 1 {
		t.Errorf("ignored metric = %v, want 1", got)
	}

	if err := tb.mqtt.deliver(t, receiveTopic, []byte(`{"timings":[]}`)); !errors.Is(err, remote.ErrInvalidTimings) {
		t.Errorf("empty frame error = %v, want ErrInvalidTimings", err)
	}
}

func TestBridge_SensorReading(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	if err := tb.mqtt.deliver(t, sensorTopic, []byte("23.5")); err != nil {
		t.Fatalf("sensor handler error = %v", err)
	}

	st, _ := tb.State("ac1")
	if st.CurrentTemperature != 23.5 {
		t.Errorf("CurrentTemperature = %v, want 23.5", st.CurrentTemperature)
	}
	msg := decodeState(t, tb.last(t, stateTopic))
	if msg.Source != device.StateHistorySourceSensor || msg.State.CurrentTemperature != 23.5 {
		t.Errorf("state message = %+v", msg)
	}
	if got := tb.history.sources; len(got) != 1 {
		t.Errorf("history sources = %v, want only setup", got)
	}
	if got := tb.telemetry.readings; len(got) != 1 || got[0] != 23.5 {
		t.Errorf("telemetry readings = %v", got)
	}

	if err := tb.mqtt.deliver(t, sensorTopic, []byte("unavailable")); !errors.Is(err, ErrInvalidReading) {
		t.Errorf("bad reading error = %v, want ErrInvalidReading", err)
	}
}

func TestBridge_RestoreState(t *testing.T) {
	tb := newTestBridge(t, true, func(m *mockDevices) {
		m.stored["ac1"] = &device.Device{
			ID: "ac1",
			State: device.State{
				"mode":               "cool",
				"target_temperature": 26.0,
				"fan_mode":           "low",
				"swing_mode":         "both",
			},
		}
	})

	st, _ := tb.State("ac1")
	if st.Mode != climate.ModeCool || st.TargetTemperature != 26 || st.SwingMode != climate.SwingBoth {
		t.Errorf("restored state = %+v, want cool 26 low both", st)
	}
	if !math.IsNaN(st.CurrentTemperature) {
		t.Errorf("CurrentTemperature = %v, want NaN before a reading", st.CurrentTemperature)
	}
	if len(tb.mqtt.on(transmitTopic)) != 0 {
		t.Error("restoring state must not transmit")
	}
}

func TestBridge_RestoreIgnoredWithoutRecord(t *testing.T) {
	tb := newTestBridge(t, true, nil)

	if st, _ := tb.State("ac1"); st.Mode != climate.ModeOff {
		t.Errorf("state = %s, want off without a stored record", st.Mode)
	}
}

func TestBridge_SyncFailureStopsStart(t *testing.T) {
	devices := newMockDevices()
	devices.syncErr = errors.New("disk full")

	b, err := NewBridge(Options{
		Instances: buildInstances(t, testDevices),
		MQTT:      newMockMQTT(),
		Factories: platforms.Factories(),
		Devices:   devices,
	})
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}
	defer b.Stop()

	if err := b.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want sync error")
	}
}

func TestBridge_Health(t *testing.T) {
	tb := newTestBridge(t, false, nil)

	h := tb.Health()
	if h.Status != HealthHealthy || h.DevicesManaged != 1 || h.Version != "test" {
		t.Errorf("Health() = %+v", h)
	}
	if h.Statistics == nil {
		t.Error("Health() statistics missing")
	}

	tb.mqtt.mu.Lock()
	tb.mqtt.connected = false
	tb.mqtt.mu.Unlock()
	if h := tb.Health(); h.Status != HealthDegraded {
		t.Errorf("Health() status = %s, want degraded", h.Status)
	}

	var health HealthMessage
	if err := json.Unmarshal(tb.last(t, mqtt.Topics{}.Health()).payload, &health); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if health.Bridge != "ir-bridge" {
		t.Errorf("published bridge id = %q", health.Bridge)
	}
}

func TestPlatformOf(t *testing.T) {
	if got := platformOf(mbishi.Class); got != "mbishi" {
		t.Errorf("platformOf() = %q, want mbishi", got)
	}
	if got := platformOf(codegen.RootNamespace("x").Class("Y")); got != "x" {
		t.Errorf("platformOf(x::Y) = %q, want x", got)
	}
}

func modePtr(m climate.Mode) *climate.Mode { return &m }

func TestBridge_ConcurrentCommandsPublishInOrder(t *testing.T) {
	for round := 0; round < 50; round++ {
		tb := newTestBridge(t, false, nil)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(target float64) {
				defer wg.Done()
				call := climate.Call{TargetTemperature: &target}
				if _, err := tb.Control(context.Background(), "ac1", call); err != nil {
					t.Errorf("Control() error = %v", err)
				}
			}(float64(18 + i))
		}
		wg.Wait()

		live, _ := tb.State("ac1")
		retained := decodeState(t, tb.last(t, stateTopic))
		if retained.State.TargetTemperature != live.TargetTemperature {
			t.Fatalf("round %d: retained target %v, live target %v",
				round, retained.State.TargetTemperature, live.TargetTemperature)
		}

		tb.devices.mu.Lock()
		updates := tb.devices.updates["ac1"]
		stored := updates[len(updates)-1]["target_temperature"]
		tb.devices.mu.Unlock()
		if stored != live.TargetTemperature {
			t.Fatalf("round %d: registry target %v, live target %v", round, stored, live.TargetTemperature)
		}
		tb.Stop()
	}
}

func TestBridge_StopUnsubscribes(t *testing.T) {
	tb := newTestBridge(t, false, nil)
	tb.Stop()

	tb.mqtt.mu.Lock()
	defer tb.mqtt.mu.Unlock()
	for _, topic := range []string{mqtt.Topics{}.AllCommands(), receiveTopic, sensorTopic} {
		if _, ok := tb.mqtt.handlers[topic]; ok {
			t.Errorf("%s still subscribed after Stop", topic)
		}
	}
}
