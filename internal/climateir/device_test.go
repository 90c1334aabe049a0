package climateir

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

// echoProtocol sends the target temperature as a single mark and accepts any
// frame whose first item is a mark.
type echoProtocol struct {
	received climate.State
}

func (echoProtocol) Transmit(st climate.State) remote.TransmitData {
	var d remote.TransmitData
	d.Mark(uint32(st.TargetTemperature))
	return d
}

func (p echoProtocol) Receive(data *remote.ReceiveData) (climate.State, bool) {
	if !data.PeekMark(100, 0) {
		return climate.State{}, false
	}
	return p.received, true
}

type mockTransmitter struct {
	mu   sync.Mutex
	sent []remote.TransmitData
	err  error
}

func (m *mockTransmitter) Transmit(_ context.Context, d remote.TransmitData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, d)
	return nil
}

func testOptions() Options {
	return Options{
		MinTemperature:  18,
		MaxTemperature:  30,
		TemperatureStep: 1,
		SupportsDry:     true,
		FanModes:        []climate.FanMode{climate.FanAuto, climate.FanLow},
		SwingModes:      []climate.SwingMode{climate.SwingOff, climate.SwingVertical},
	}
}

func newTestDevice(proto Protocol) (*ClimateIR, *mockTransmitter) {
	dev := New(proto, testOptions())
	tx := &mockTransmitter{}
	dev.SetID("ac1")
	dev.SetTransmitter(tx)
	return dev, tx
}

func TestTraits(t *testing.T) {
	dev, _ := newTestDevice(echoProtocol{})
	dev.SetSupportsHeat(false)

	tr := dev.Traits()
	if !tr.SupportsMode(climate.ModeCool) || tr.SupportsMode(climate.ModeHeat) {
		t.Errorf("cool/heat flags not applied: %v", tr.Modes)
	}
	if !tr.SupportsMode(climate.ModeDry) || tr.SupportsMode(climate.ModeFanOnly) {
		t.Errorf("option modes wrong: %v", tr.Modes)
	}
	if tr.SupportsCurrentTemperature {
		t.Error("current temperature supported without sensor")
	}
	dev.SetSensor("room_temp")
	if !dev.Traits().SupportsCurrentTemperature {
		t.Error("sensor did not enable current temperature")
	}
}

func TestSetupDefaults(t *testing.T) {
	tests := []struct {
		name       string
		current    float64
		restored   *climate.State
		wantMode   climate.Mode
		wantTarget float64
	}{
		{"no reading", math.NaN(), nil, climate.ModeOff, DefaultTargetTemperature},
		{"room reading", 20.6, nil, climate.ModeOff, 21},
		{"reading below range", 12, nil, climate.ModeOff, 18},
		{
			"restored",
			math.NaN(),
			&climate.State{Mode: climate.ModeCool, TargetTemperature: 19, FanMode: climate.FanLow, SwingMode: climate.SwingOff},
			climate.ModeCool, 19,
		},
		{
			"restored unsupported mode",
			math.NaN(),
			&climate.State{Mode: climate.ModeFanOnly, TargetTemperature: 19, FanMode: climate.FanLow, SwingMode: climate.SwingOff},
			climate.ModeOff, DefaultTargetTemperature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, tx := newTestDevice(echoProtocol{})
			if !math.IsNaN(tt.current) {
				dev.SetCurrentTemperature(tt.current)
			}
			dev.Setup(tt.restored)

			st := dev.State()
			if st.Mode != tt.wantMode || st.TargetTemperature != tt.wantTarget {
				t.Errorf("State() = %+v, want mode %s target %g", st, tt.wantMode, tt.wantTarget)
			}
			if tt.restored == nil && (st.FanMode != climate.FanAuto || st.SwingMode != climate.SwingOff) {
				t.Errorf("default fan/swing = %s/%s", st.FanMode, st.SwingMode)
			}
			if len(tx.sent) != 0 {
				t.Error("Setup() transmitted")
			}
		})
	}
}

func TestControlTransmitsAndNotifies(t *testing.T) {
	dev, tx := newTestDevice(echoProtocol{})
	dev.Setup(nil)

	var got []climate.State
	dev.AddStateCallback(func(id string, st climate.State) {
		if id != "ac1" {
			t.Errorf("callback id = %s", id)
		}
		got = append(got, st)
	})

	mode, temp := climate.ModeCool, 21.0
	st, err := dev.Control(context.Background(), climate.Call{Mode: &mode, TargetTemperature: &temp})
	if err != nil {
		t.Fatalf("Control() error = %v", err)
	}
	if st.Mode != climate.ModeCool || st.TargetTemperature != 21 {
		t.Errorf("Control() = %+v", st)
	}
	if len(tx.sent) != 1 || tx.sent[0].Timings[0] != 21 {
		t.Errorf("sent = %v", tx.sent)
	}
	if len(got) != 1 || got[0].Mode != climate.ModeCool {
		t.Errorf("callbacks = %v", got)
	}
}

func TestControlErrorsKeepState(t *testing.T) {
	dev, tx := newTestDevice(echoProtocol{})
	dev.Setup(nil)
	before := dev.State()

	heat := climate.ModeFanOnly
	if _, err := dev.Control(context.Background(), climate.Call{Mode: &heat}); !errors.Is(err, climate.ErrInvalidMode) {
		t.Errorf("unsupported mode error = %v", err)
	}
	if _, err := dev.Control(context.Background(), climate.Call{}); !errors.Is(err, climate.ErrEmptyCall) {
		t.Errorf("empty call error = %v", err)
	}

	tx.err = errors.New("offline")
	cool := climate.ModeCool
	if _, err := dev.Control(context.Background(), climate.Call{Mode: &cool}); !errors.Is(err, tx.err) {
		t.Errorf("transmit error = %v", err)
	}
	if dev.State().Mode != before.Mode {
		t.Error("state changed after failed transmit")
	}

	noTx := New(echoProtocol{}, testOptions())
	if _, err := noTx.Control(context.Background(), climate.Call{Mode: &cool}); !errors.Is(err, remote.ErrNoTransmitter) {
		t.Errorf("no transmitter error = %v", err)
	}
}

func TestOnReceive(t *testing.T) {
	received := climate.State{Mode: climate.ModeHeat, TargetTemperature: 26, FanMode: climate.FanLow, SwingMode: climate.SwingOff}
	dev, tx := newTestDevice(echoProtocol{received: received})
	dev.SetCurrentTemperature(19)

	if dev.OnReceive(remote.NewReceiveData([]int32{-5}, 0)) {
		t.Fatal("OnReceive() accepted a foreign frame")
	}
	if !dev.OnReceive(remote.NewReceiveData([]int32{100}, 0)) {
		t.Fatal("OnReceive() rejected a frame")
	}

	st := dev.State()
	if st.Mode != climate.ModeHeat || st.TargetTemperature != 26 {
		t.Errorf("State() = %+v", st)
	}
	if st.CurrentTemperature != 19 {
		t.Errorf("CurrentTemperature = %g, want kept reading 19", st.CurrentTemperature)
	}
	if len(tx.sent) != 0 {
		t.Error("OnReceive() transmitted")
	}
}

func TestOnReceiveClampsTarget(t *testing.T) {
	tests := []struct {
		name     string
		received float64
		want     float64
	}{
		{"above max", 32, 30},
		{"below min", 15, 18},
		{"in range", 23, 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received := climate.State{Mode: climate.ModeCool, TargetTemperature: tt.received, FanMode: climate.FanAuto, SwingMode: climate.SwingOff}
			dev, tx := newTestDevice(echoProtocol{received: received})

			if !dev.OnReceive(remote.NewReceiveData([]int32{100}, 0)) {
				t.Fatal("OnReceive() rejected a frame")
			}
			if got := dev.State().TargetTemperature; got != tt.want {
				t.Fatalf("TargetTemperature = %g, want %g", got, tt.want)
			}

			mode := climate.ModeHeat
			st, err := dev.Control(context.Background(), climate.Call{Mode: &mode})
			if err != nil {
				t.Fatalf("Control() error = %v", err)
			}
			if st.TargetTemperature != tt.want {
				t.Errorf("reported target = %g, want %g", st.TargetTemperature, tt.want)
			}
			if sent := tx.sent[0].Timings[0]; sent != int32(tt.want) {
				t.Errorf("sent target = %d, want %g", sent, tt.want)
			}
		})
	}
}
