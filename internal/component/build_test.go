package component_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/mbishi"
	"github.com/nerrad567/gray-logic-irclimate/internal/platforms"
	"github.com/nerrad567/gray-logic-irclimate/internal/schema"
)

const validConfig = `
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
  tolerance: 30%

sensor:
  - platform: mqtt_subscribe
    id: room_temp
    name: Living room temperature
    topic: zigbee2mqtt/living_room_sensor/temperature
`

func catalog(t *testing.T) *component.Catalog {
	t.Helper()
	c, err := platforms.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	return c
}

func parse(t *testing.T, src string) *component.Document {
	t.Helper()
	doc, err := component.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestBuildValidEntry(t *testing.T) {
	reg := codegen.NewRegistry()
	p, err := component.Build(catalog(t), parse(t, validConfig), reg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	acs := reg.ByClass(mbishi.Class)
	if len(acs) != 1 || acs[0].ID.Name != "ac1" {
		t.Fatalf("mbishi instances = %v, want [ac1]", acs)
	}
	if got := acs[0].Registrations; len(got) != 2 || got[0] != "component" || got[1] != "climate" {
		t.Errorf("Registrations = %v, want [component climate]", got)
	}

	// Hardware is generated before the climate that references it even
	// though the climate comes first in the file.
	stmts := p.Statements()
	if stmts[0].String() != "ir_tx = new esphome::remote_transmitter::RemoteTransmitterComponent();" {
		t.Errorf("first statement = %q", stmts[0])
	}

	var buf bytes.Buffer
	if err := p.Render(&buf, codegen.RenderOptions{Name: "living"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"ir_rx->set_tolerance(30);",
		"ir_rx->register_listener(ac1);",
		"ac1->set_sensor(room_temp);",
		"ac1->set_transmitter(ir_tx);",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
	if got := strings.Join(p.Components(), ","); got != "climate,climate_ir,mbishi,mqtt_subscribe,remote_base,remote_receiver,remote_transmitter,sensor" {
		t.Errorf("Components() = %s", got)
	}
}

func TestBuildMissingIDNeverGenerates(t *testing.T) {
	src := `
remote_transmitter:
  id: ir_tx
  pin: 14
climate:
  - platform: mbishi
    name: Living room
`
	reg := codegen.NewRegistry()
	p, err := component.Build(catalog(t), parse(t, src), reg)
	if p != nil {
		t.Error("program returned on validation failure")
	}
	if !errors.Is(err, schema.ErrMissingKey) {
		t.Fatalf("Build() error = %v, want ErrMissingKey", err)
	}
	var errs schema.Errors
	if !errors.As(err, &errs) || errs[0].PathString() != "climate[0].id" {
		t.Errorf("error path = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry has %d instances after failed validation", reg.Len())
	}
}

func TestBuildDuplicateID(t *testing.T) {
	src := `
remote_transmitter:
  id: ir_tx
  pin: 14
climate:
  - platform: mbishi
    id: ac1
    name: One
  - platform: mbishi
    id: ac1
    name: Two
`
	reg := codegen.NewRegistry()
	_, err := component.Build(catalog(t), parse(t, src), reg)
	if !errors.Is(err, codegen.ErrDuplicateID) {
		t.Fatalf("Build() error = %v, want ErrDuplicateID", err)
	}
	var regErr *component.RegistrationError
	if !errors.As(err, &regErr) || regErr.Path[0] != "climate[1]" || regErr.ID != "ac1" {
		t.Errorf("RegistrationError = %+v", regErr)
	}
	if n := len(reg.ByClass(mbishi.Class)); n != 1 {
		t.Errorf("%d mbishi instances registered, want 1", n)
	}
}

func TestValidateCollectsAcrossEntries(t *testing.T) {
	src := `
climate:
  - platform: mbishi
    name: No id
  - platform: daikin
    id: ac2
    name: Wrong platform
  - id: ac3
    name: No platform
remote_transmitter:
  id: tx
  pin: GPIO99
wifi:
  ssid: home
`
	_, err := component.Validate(catalog(t), parse(t, src))
	var errs schema.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T (%v)", err, err)
	}

	want := []struct {
		path string
		err  error
	}{
		{"climate[0].id", schema.ErrMissingKey},
		{"climate[1].platform", component.ErrUnknownComponent},
		{"climate[2].platform", schema.ErrMissingKey},
		{"remote_transmitter.pin", schema.ErrInvalidValue},
		{"wifi", component.ErrUnknownComponent},
	}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(want))
	}
	for i, w := range want {
		if errs[i].PathString() != w.path || !errors.Is(errs[i], w.err) {
			t.Errorf("error %d = %v, want %s: %v", i, errs[i], w.path, w.err)
		}
	}
}

func TestGenerateOrdersByPriority(t *testing.T) {
	var order []string
	record := func(name string) component.ToCodeFunc {
		return func(*codegen.Program, schema.Record) error {
			order = append(order, name)
			return nil
		}
	}
	c, err := component.NewCatalog(
		component.Platform{Domain: "dev", ToCode: record("dev"), Priority: component.PriorityDevice},
		component.Platform{Domain: "hw", ToCode: record("hw"), Priority: component.PriorityHardware},
		component.Platform{Domain: "sense", ToCode: record("sense"), Priority: component.PrioritySensor},
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	entries, err := component.Validate(c, parse(t, "dev:\nsense:\nhw:\n"))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := component.Generate(c, codegen.NewProgram(nil), entries); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := strings.Join(order, ","); got != "hw,sense,dev" {
		t.Errorf("order = %s, want hw,sense,dev", got)
	}
}

func TestGenerateWrapsError(t *testing.T) {
	boom := errors.New("boom")
	c, _ := component.NewCatalog(component.Platform{
		Domain: "x",
		ToCode: func(*codegen.Program, schema.Record) error { return boom },
	})
	entries, err := component.Validate(c, parse(t, "x:\n"))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	err = component.Generate(c, codegen.NewProgram(nil), entries)
	var regErr *component.RegistrationError
	if !errors.As(err, &regErr) || regErr.Err != boom {
		t.Errorf("Generate() error = %v, want RegistrationError around boom", err)
	}
}
