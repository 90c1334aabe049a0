package codegen

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// RenderOptions controls the generated main.cpp.
type RenderOptions struct {
	// Name is the node name passed to App.pre_setup.
	Name string

	// BuildID is written to the header comment.
	BuildID string
}

var funcMap = template.FuncMap{
	"quote": cppString,
	"join":  strings.Join,
}

const mainTmpl = `{{define "main"}}// Auto generated by irclimate-gen. Do not edit.
{{- if .BuildID}}
// Build: {{.BuildID}}
{{- end}}
{{- if .Components}}
// Components: {{join .Components ", "}}
{{- end}}
#include "esphome.h"
using namespace esphome;
{{range .Instances}}
{{.Class.FullName}} *{{.ID.Name}};
{{- end}}

void setup() {
  App.pre_setup({{quote .Name}}, __DATE__ ", " __TIME__);
{{- range .Statements}}
  {{.}}
{{- end}}
  App.setup();
}

void loop() {
  App.loop();
}
{{end}}`

var templates = template.Must(template.New("").Funcs(funcMap).Parse(mainTmpl))

type mainData struct {
	Name       string
	BuildID    string
	Components []string
	Instances  []*Instance
	Statements []Statement
}

// Render writes the program as a C++ translation unit.
func (p *Program) Render(w io.Writer, opts RenderOptions) error {
	if opts.Name == "" {
		opts.Name = "irclimate"
	}
	data := mainData{
		Name:       opts.Name,
		BuildID:    opts.BuildID,
		Components: p.Components(),
		Instances:  p.registry.Instances(),
		Statements: p.statements,
	}
	if err := templates.ExecuteTemplate(w, "main", data); err != nil {
		return fmt.Errorf("rendering main: %w", err)
	}
	return nil
}
