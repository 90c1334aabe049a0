package climateir

import (
	"fmt"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

// Factory creates an unconfigured unit for one platform.
type Factory func() *ClimateIR

// Resolver finds live transmitters by configured ID.
type Resolver interface {
	Transmitter(id string) (remote.Transmitter, bool)
}

// Configure applies a generated instance to a live unit: identity, name,
// mode support, sensor and transmitter. References are taken from the
// instance's setup calls, so automatic IDs resolve exactly as generated.
func Configure(dev *ClimateIR, inst *codegen.Instance, r Resolver) error {
	if !inst.Class().Inherits(Class) {
		return fmt.Errorf("%w: %q is %s, expected %s", codegen.ErrClassMismatch, inst.ID.Name, inst.Class(), Class)
	}
	rec := schema.Record(inst.Config)

	dev.SetID(inst.ID.Name)
	dev.SetName(rec.String(KeyName))
	dev.SetSupportsCool(rec.Bool(KeySupportsCool))
	dev.SetSupportsHeat(rec.Bool(KeySupportsHeat))

	if target, ok := callTarget(inst, "set_sensor"); ok {
		dev.SetSensor(target.ID.Name)
	}

	target, ok := callTarget(inst, "set_transmitter")
	if !ok {
		return fmt.Errorf("%w: %s has no transmitter", remote.ErrNoTransmitter, inst.ID.Name)
	}
	tx, ok := r.Transmitter(target.ID.Name)
	if !ok {
		return fmt.Errorf("%w: transmitter %q for %s", codegen.ErrUnknownID, target.ID.Name, inst.ID.Name)
	}
	dev.SetTransmitter(tx)
	return nil
}

func callTarget(inst *codegen.Instance, method string) (*codegen.Instance, bool) {
	call, ok := inst.FindCall(method)
	if !ok || len(call.Args) == 0 {
		return nil, false
	}
	return codegen.Referenced(call.Args[0])
}

// Listeners returns the instances a receiver instance feeds.
func Listeners(receiver *codegen.Instance) []*codegen.Instance {
	var out []*codegen.Instance
	for _, call := range receiver.Calls {
		if call.Method != "register_listener" || len(call.Args) == 0 {
			continue
		}
		if target, ok := codegen.Referenced(call.Args[0]); ok {
			out = append(out, target)
		}
	}
	return out
}
