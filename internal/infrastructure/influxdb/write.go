package influxdb

import (
	"math"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
)

// Measurement names.
const (
	MeasurementClimate         = "climate_state"
	MeasurementIRFrame         = "ir_frames"
	MeasurementRoomTemperature = "room_temperature"
)

// IR frame directions.
const (
	DirectionTX = "tx"
	DirectionRX = "rx"
)

// NewClimatePoint builds the point recorded for a climate state change.
//
// Mode, fan and swing are tags so dashboards can group by them; the
// temperatures and a 0/1 power flag are fields. An unknown room temperature
// is left out.
func NewClimatePoint(deviceID string, st climate.State, ts time.Time) *write.Point {
	fields := map[string]any{
		"target_temperature": st.TargetTemperature,
		"power":              boolToInt(st.Power()),
	}
	if !math.IsNaN(st.CurrentTemperature) {
		fields["current_temperature"] = st.CurrentTemperature
	}

	return write.NewPoint(
		MeasurementClimate,
		map[string]string{
			"device_id":  deviceID,
			"mode":       string(st.Mode),
			"fan_mode":   string(st.FanMode),
			"swing_mode": string(st.SwingMode),
		},
		fields,
		ts,
	)
}

// NewIRFramePoint builds the point recorded for one raw frame sent or received.
func NewIRFramePoint(remoteID, direction string, items int, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementIRFrame,
		map[string]string{
			"remote_id": remoteID,
			"direction": direction,
		},
		map[string]any{"items": items},
		ts,
	)
}

// NewRoomTemperaturePoint builds the point recorded for a sensor reading.
func NewRoomTemperaturePoint(sensorID string, celsius float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementRoomTemperature,
		map[string]string{"sensor_id": sensorID},
		map[string]any{"celsius": celsius},
		ts,
	)
}

// sameState reports whether two states would produce the same climate point.
// Unknown room temperatures compare equal.
func sameState(a, b climate.State) bool {
	if a.Mode != b.Mode || a.FanMode != b.FanMode || a.SwingMode != b.SwingMode ||
		a.TargetTemperature != b.TargetTemperature {
		return false
	}
	if math.IsNaN(a.CurrentTemperature) || math.IsNaN(b.CurrentTemperature) {
		return math.IsNaN(a.CurrentTemperature) && math.IsNaN(b.CurrentTemperature)
	}
	return a.CurrentTemperature == b.CurrentTemperature
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteClimateState records a unit's state unless it matches the last state
// written for that unit. Non-blocking; dropped once closed.
func (c *Client) WriteClimateState(deviceID string, st climate.State) {
	c.mu.Lock()
	if c.influx == nil || c.closed {
		c.mu.Unlock()
		return
	}
	if last, ok := c.lastState[deviceID]; ok && sameState(last, st) {
		c.mu.Unlock()
		return
	}
	c.lastState[deviceID] = st
	c.mu.Unlock()

	c.writer.WritePoint(NewClimatePoint(deviceID, st, time.Now()))
}

// WriteIRFrame records a frame sent by a transmitter or decoded from a receiver.
func (c *Client) WriteIRFrame(remoteID, direction string, items int) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(NewIRFramePoint(remoteID, direction, items, time.Now()))
}

// WriteRoomTemperature records a reading from a room sensor.
func (c *Client) WriteRoomTemperature(sensorID string, celsius float64) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(NewRoomTemperaturePoint(sensorID, celsius, time.Now()))
}
