// Package ir bridges generated IR climate units to MQTT.
//
// A Bridge is built from the instance registry of a code generation run.
// Every climate instance becomes a live climateir unit bound to an MQTT IR
// blaster, every remote_receiver feeds captured frames back to the units it
// lists, and every mqtt_subscribe sensor supplies room temperatures.
//
// Topics follow the flat bridge scheme:
//
//	graylogic/command/ir/{device_id}   calls in (CommandMessage)
//	graylogic/ack/ir/{device_id}       acknowledgements out (AckMessage)
//	graylogic/state/ir/{device_id}     retained state out (StateMessage)
//	graylogic/health/ir                retained bridge health (HealthMessage)
//	graylogic/ir/{transmitter}/transmit   raw frames out (remote.FrameMessage)
//	graylogic/ir/{receiver}/receive       raw frames in (remote.FrameMessage)
//
// State changes are mirrored to the device registry and state history when
// those are configured, written to InfluxDB, and exported as Prometheus
// metrics.
package ir
