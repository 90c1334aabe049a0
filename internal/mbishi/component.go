package mbishi

import (
	"github.com/nerrad567/gray-logic-irclimate/internal/climateir"
	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// Namespace and class of the generated device.
var (
	Namespace = codegen.Esphome.Namespace("mbishi")
	Class     = Namespace.Class("MbishiClimate", climateir.Class)
)

// ConfigSchema is the IR climate schema with a receiver plus the device id.
var ConfigSchema = climateir.WithReceiverSchema.Extend(
	schema.DeclareID(Class),
)

// AutoLoad lists the components every mbishi build needs.
var AutoLoad = []string{"climate_ir"}

// Validate checks one configuration entry.
func Validate(entry map[string]any) (schema.Record, error) {
	return ConfigSchema.Validate(entry)
}

// ToCode declares the device and hands it to the IR climate base.
// Errors from the base are returned as they are.
func ToCode(p *codegen.Program, rec schema.Record) error {
	inst, err := p.NewPvariable(rec.ID(), rec.Map())
	if err != nil {
		return err
	}
	return climateir.Register(p, inst, rec)
}

// Platform returns the climate/mbishi catalogue entry.
func Platform() component.Platform {
	return component.Platform{
		Domain:   "climate",
		Name:     "mbishi",
		Schema:   ConfigSchema,
		ToCode:   ToCode,
		AutoLoad: AutoLoad,
		Priority: component.PriorityDevice,
	}
}
