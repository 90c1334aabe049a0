// Package climateir is the shared base of infrared-controlled air
// conditioners: the configuration every IR climate platform accepts, the
// setup code it generates, and the runtime device that keeps the unit's
// state and turns control calls into IR frames through a Protocol.
package climateir

import (
	"fmt"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// Generated namespaces and classes.
var (
	ClimateNamespace = codegen.Esphome.Namespace("climate")
	Namespace        = codegen.Esphome.Namespace("climate_ir")

	// ClimateClass is the base of every climate device.
	ClimateClass = ClimateNamespace.Class("Climate")

	// Class is the base every IR climate platform derives from.
	Class = Namespace.Class("ClimateIR", ClimateClass, codegen.Component, remote.ListenerClass)
)

// Configuration keys.
const (
	KeyName          = "name"
	KeyTransmitterID = "transmitter_id"
	KeyReceiverID    = "receiver_id"
	KeySupportsCool  = "supports_cool"
	KeySupportsHeat  = "supports_heat"
	KeySensor        = "sensor"
)

// Schema is the configuration shared by all IR climate platforms.
// The transmitter may be omitted when exactly one is configured.
var Schema = schema.New(
	schema.Required(KeyName, schema.NonEmptyString),
	schema.UseIDDefault(KeyTransmitterID, remote.TransmitterClass),
	schema.OptionalDefault(KeySupportsCool, true, schema.Boolean),
	schema.OptionalDefault(KeySupportsHeat, true, schema.Boolean),
	schema.UseID(KeySensor, remote.SensorClass),
)

// WithReceiverSchema adds an optional receiver so the device can follow the
// original remote control.
var WithReceiverSchema = Schema.Extend(
	schema.UseID(KeyReceiverID, remote.ReceiverClass),
)

// Register emits the base IR climate setup for inst.
//
// References are resolved before anything is emitted, so a failed lookup
// leaves the program as it was after instantiation.
func Register(p *codegen.Program, inst *codegen.Instance, rec schema.Record) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instance", codegen.ErrInvalidInstance)
	}

	txID, ok := rec.Ref(KeyTransmitterID)
	if !ok {
		return fmt.Errorf("%w: %s has no %s", codegen.ErrUnknownID, inst.ID.Name, KeyTransmitterID)
	}
	tx, err := p.GetVariable(txID)
	if err != nil {
		return err
	}

	var sensor, receiver *codegen.Instance
	if id, ok := rec.Ref(KeySensor); ok {
		if sensor, err = p.GetVariable(id); err != nil {
			return err
		}
	}
	if id, ok := rec.Ref(KeyReceiverID); ok {
		if receiver, err = p.GetVariable(id); err != nil {
			return err
		}
	}

	p.RegisterComponent(inst)
	p.Register(inst, "climate")
	p.Add(inst, "set_name", codegen.Literal(rec.String(KeyName)))
	p.Add(inst, "set_supports_cool", codegen.Literal(rec.Bool(KeySupportsCool)))
	p.Add(inst, "set_supports_heat", codegen.Literal(rec.Bool(KeySupportsHeat)))
	if sensor != nil {
		p.Add(inst, "set_sensor", codegen.Ref(sensor))
	}
	if receiver != nil {
		p.Add(receiver, "register_listener", codegen.Ref(inst))
	}
	p.Add(inst, "set_transmitter", codegen.Ref(tx))
	return nil
}

// Platform is the climate_ir component that IR climate platforms auto-load.
// It has no configuration of its own.
func Platform() component.Platform {
	return component.Platform{Domain: "climate_ir", AutoLoad: []string{"climate", "remote_base"}}
}

// ClimatePlatform is the climate domain component.
func ClimatePlatform() component.Platform {
	return component.Platform{Domain: "climate"}
}
