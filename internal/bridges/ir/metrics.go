package ir

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
)

// MetricsCollector exports bridge traffic and unit state to Prometheus.
type MetricsCollector struct {
	commands       *prometheus.CounterVec
	frames         *prometheus.CounterVec
	framesIgnored  *prometheus.CounterVec
	sensorReadings *prometheus.CounterVec

	power       *prometheus.GaugeVec
	mode        *prometheus.GaugeVec
	setpoint    *prometheus.GaugeVec
	roomTemp    *prometheus.GaugeVec
	mqttUp      prometheus.Gauge
	devicesSeen prometheus.Gauge
}

// NewMetricsCollector creates the collector. Register it with a
// prometheus.Registerer to expose it.
func NewMetricsCollector() *MetricsCollector {
	deviceLabels := []string{"device_id"}
	return &MetricsCollector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irclimate_commands_total",
			Help: "Climate commands handled, by result",
		}, []string{"device_id", "status"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irclimate_ir_frames_total",
			Help: "Raw IR frames sent or recognised",
		}, []string{"remote_id", "direction"}),
		framesIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irclimate_ir_frames_ignored_total",
			Help: "Received IR frames no unit recognised",
		}, []string{"receiver_id"}),
		sensorReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irclimate_sensor_readings_total",
			Help: "Room temperature readings received",
		}, []string{"sensor_id"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irclimate_power",
			Help: "Whether the unit is running (1=on, 0=off)",
		}, deviceLabels),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irclimate_mode",
			Help: "Operating mode of the unit (1=active)",
		}, []string{"device_id", "mode"}),
		setpoint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irclimate_target_temperature_celsius",
			Help: "Target temperature (celsius)",
		}, deviceLabels),
		roomTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irclimate_current_temperature_celsius",
			Help: "Room temperature from the attached sensor (celsius)",
		}, deviceLabels),
		mqttUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irclimate_mqtt_connected",
			Help: "Whether the bridge is connected to the broker (1=up, 0=down)",
		}),
		devicesSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irclimate_devices",
			Help: "Number of IR climate units managed by the bridge",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.commands.Describe(ch)
	c.frames.Describe(ch)
	c.framesIgnored.Describe(ch)
	c.sensorReadings.Describe(ch)
	c.power.Describe(ch)
	c.mode.Describe(ch)
	c.setpoint.Describe(ch)
	c.roomTemp.Describe(ch)
	c.mqttUp.Describe(ch)
	c.devicesSeen.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.commands.Collect(ch)
	c.frames.Collect(ch)
	c.framesIgnored.Collect(ch)
	c.sensorReadings.Collect(ch)
	c.power.Collect(ch)
	c.mode.Collect(ch)
	c.setpoint.Collect(ch)
	c.roomTemp.Collect(ch)
	c.mqttUp.Collect(ch)
	c.devicesSeen.Collect(ch)
}

// ObserveState publishes a unit's state. Exactly one mode series is 1.
func (c *MetricsCollector) ObserveState(deviceID string, st climate.State) {
	if st.Power() {
		c.power.WithLabelValues(deviceID).Set(1)
	} else {
		c.power.WithLabelValues(deviceID).Set(0)
	}
	for _, m := range climate.AllModes() {
		v := 0.0
		if m == st.Mode {
			v = 1
		}
		c.mode.WithLabelValues(deviceID, string(m)).Set(v)
	}
	c.setpoint.WithLabelValues(deviceID).Set(st.TargetTemperature)
	if math.IsNaN(st.CurrentTemperature) {
		c.roomTemp.DeleteLabelValues(deviceID)
	} else {
		c.roomTemp.WithLabelValues(deviceID).Set(st.CurrentTemperature)
	}
}

func (c *MetricsCollector) observeCommand(deviceID string, status AckStatus) {
	c.commands.WithLabelValues(deviceID, string(status)).Inc()
}

func (c *MetricsCollector) observeFrame(remoteID, direction string) {
	c.frames.WithLabelValues(remoteID, direction).Inc()
}

func (c *MetricsCollector) observeIgnored(receiverID string) {
	c.framesIgnored.WithLabelValues(receiverID).Inc()
}

func (c *MetricsCollector) observeReading(sensorID string) {
	c.sensorReadings.WithLabelValues(sensorID).Inc()
}

func (c *MetricsCollector) setConnected(up bool) {
	if up {
		c.mqttUp.Set(1)
	} else {
		c.mqttUp.Set(0)
	}
}

func (c *MetricsCollector) setDevices(n int) {
	c.devicesSeen.Set(float64(n))
}
