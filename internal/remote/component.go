package remote

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// Generated namespaces and classes.
var (
	BaseNamespace        = codegen.Esphome.Namespace("remote_base")
	TransmitterNamespace = codegen.Esphome.Namespace("remote_transmitter")
	ReceiverNamespace    = codegen.Esphome.Namespace("remote_receiver")
	SensorNamespace      = codegen.Esphome.Namespace("sensor")
	SubscribeNamespace   = codegen.Esphome.Namespace("mqtt_subscribe")

	// ListenerClass is implemented by anything a receiver can feed.
	ListenerClass = BaseNamespace.Class("RemoteReceiverListener")

	TransmitterClass = TransmitterNamespace.Class("RemoteTransmitterComponent", codegen.Component)
	ReceiverClass    = ReceiverNamespace.Class("RemoteReceiverComponent", codegen.Component)

	// SensorClass is the base of every numeric sensor.
	SensorClass = SensorNamespace.Class("Sensor")

	SubscribeSensorClass = SubscribeNamespace.Class("MQTTSubscribeSensor", SensorClass, codegen.Component)
)

// Configuration keys.
const (
	KeyPin         = "pin"
	KeyTopic       = "topic"
	KeyDutyPercent = "carrier_duty_percent"
	KeyTolerance   = "tolerance"
	KeyIdle        = "idle"
	KeyName        = "name"
	KeyQoS         = "qos"
)

var pinRegex = regexp.MustCompile(`^(?i)(gpio|d)?([0-9]{1,2})$`)

// Pin accepts a GPIO number or a name such as "GPIO14" and returns the
// canonical "GPIOn" form.
func Pin(v any) (any, error) {
	s := strings.TrimSpace(fmt.Sprint(v))
	m := pinRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("expected GPIO pin such as GPIO14, got %v", v)
	}
	if strings.EqualFold(m[1], "d") {
		return nil, fmt.Errorf("board pin alias %q is not supported, use the GPIO number", s)
	}
	n, _ := strconv.Atoi(m[2])
	if n > 39 {
		return nil, fmt.Errorf("GPIO%d does not exist", n)
	}
	return "GPIO" + strconv.Itoa(n), nil
}

// TransmitterSchema configures a remote_transmitter.
var TransmitterSchema = schema.New(
	schema.DeclareID(TransmitterClass),
	schema.Required(KeyPin, Pin),
	schema.OptionalDefault(KeyDutyPercent, 50, schema.PercentInt(1, 100)),
	schema.Optional(KeyTopic, schema.Topic),
)

// ReceiverSchema configures a remote_receiver.
var ReceiverSchema = schema.New(
	schema.DeclareID(ReceiverClass),
	schema.Required(KeyPin, Pin),
	schema.OptionalDefault(KeyTolerance, DefaultTolerance, schema.PercentInt(1, 100)),
	schema.OptionalDefault(KeyIdle, 10*time.Millisecond, schema.TimePeriod),
	schema.Optional(KeyTopic, schema.Topic),
)

// SubscribeSensorSchema configures a sensor fed from an MQTT topic.
var SubscribeSensorSchema = schema.New(
	schema.DeclareID(SubscribeSensorClass),
	schema.Required(KeyName, schema.NonEmptyString),
	schema.Required(KeyTopic, schema.Topic),
	schema.OptionalDefault(KeyQoS, 0, schema.IntRange(0, 2)),
)

// TransmitterTopic returns the topic raw frames for transmitter id are
// published to.
func TransmitterTopic(id string, rec schema.Record) string {
	if t := rec.String(KeyTopic); t != "" {
		return t
	}
	return fmt.Sprintf("graylogic/ir/%s/transmit", id)
}

// ReceiverTopic returns the topic receiver id reports raw frames on.
func ReceiverTopic(id string, rec schema.Record) string {
	if t := rec.String(KeyTopic); t != "" {
		return t
	}
	return fmt.Sprintf("graylogic/ir/%s/receive", id)
}

// TransmitterToCode declares a transmitter.
func TransmitterToCode(p *codegen.Program, rec schema.Record) error {
	inst, err := p.NewPvariable(rec.ID(), rec.Map())
	if err != nil {
		return err
	}
	p.RegisterComponent(inst)
	p.Add(inst, "set_pin", codegen.Literal(rec.String(KeyPin)))
	p.Add(inst, "set_carrier_duty_percent", codegen.Literal(rec.Int(KeyDutyPercent)))
	return nil
}

// ReceiverToCode declares a receiver.
func ReceiverToCode(p *codegen.Program, rec schema.Record) error {
	inst, err := p.NewPvariable(rec.ID(), rec.Map())
	if err != nil {
		return err
	}
	p.RegisterComponent(inst)
	p.Add(inst, "set_pin", codegen.Literal(rec.String(KeyPin)))
	p.Add(inst, "set_tolerance", codegen.Literal(rec.Int(KeyTolerance)))
	p.Add(inst, "set_idle_us", codegen.Literal(rec.Duration(KeyIdle).Microseconds()))
	return nil
}

// SubscribeSensorToCode declares an MQTT-fed sensor.
func SubscribeSensorToCode(p *codegen.Program, rec schema.Record) error {
	inst, err := p.NewPvariable(rec.ID(), rec.Map())
	if err != nil {
		return err
	}
	p.RegisterComponent(inst)
	p.Register(inst, "sensor")
	p.Add(inst, "set_name", codegen.Literal(rec.String(KeyName)))
	p.Add(inst, "set_topic", codegen.Literal(rec.String(KeyTopic)))
	p.Add(inst, "set_qos", codegen.Literal(rec.Int(KeyQoS)))
	return nil
}

// Platforms returns the remote components for a catalogue.
func Platforms() []component.Platform {
	return []component.Platform{
		{
			Domain:   "remote_transmitter",
			Schema:   TransmitterSchema,
			ToCode:   TransmitterToCode,
			AutoLoad: []string{"remote_base"},
			Priority: component.PriorityHardware,
		},
		{
			Domain:   "remote_receiver",
			Schema:   ReceiverSchema,
			ToCode:   ReceiverToCode,
			AutoLoad: []string{"remote_base"},
			Priority: component.PriorityHardware,
		},
		{Domain: "remote_base"},
		{Domain: "sensor", Name: "mqtt_subscribe",
			Schema:   SubscribeSensorSchema,
			ToCode:   SubscribeSensorToCode,
			Priority: component.PrioritySensor,
		},
	}
}
