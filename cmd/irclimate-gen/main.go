// irclimate-gen validates a device file and renders the firmware setup
// source for it.
//
//	irclimate-gen -devices devices.yaml -output main.cpp -name livingroom
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-irclimate/internal/platforms"
)

// Version information - set at build time via ldflags
var version = "dev"

const defaultNodeName = "irclimate"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// options are the parsed command-line flags.
type options struct {
	devices string
	output  string
	name    string
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("irclimate-gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.devices, "devices", "configs/devices.yaml", "device configuration file")
	fs.StringVar(&opts.output, "output", "-", "output file, - for stdout")
	fs.StringVar(&opts.name, "name", defaultNodeName, "node name")
	fs.BoolVar(&opts.verbose, "v", false, "log each registered instance")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.name == "" {
		return opts, errors.New("-name must not be empty")
	}
	return opts, nil
}

// run generates the program. Nothing is written when validation or code
// generation fails.
func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logging.NewWithWriter(stderr, config.LoggingConfig{Level: level, Format: "text"}, version)

	prog, err := generate(opts.devices, log)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buildID := uuid.NewString()
	if err := prog.Render(&buf, codegen.RenderOptions{Name: opts.name, BuildID: buildID}); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if opts.output == "-" {
		_, err = buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil { //nolint:gosec // generated source is not secret
		return fmt.Errorf("writing output: %w", err)
	}

	log.Info("program generated",
		"output", opts.output,
		"instances", prog.Registry().Len(),
		"build_id", buildID,
	)
	return nil
}

func generate(path string, log *logging.Logger) (*codegen.Program, error) {
	doc, err := component.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading devices: %w", err)
	}
	catalog, err := platforms.Catalog()
	if err != nil {
		return nil, fmt.Errorf("building platform catalogue: %w", err)
	}

	registry := codegen.NewRegistry()
	registry.SetLogger(log.Component("codegen"))

	prog, err := component.Build(catalog, doc, registry)
	if err != nil {
		return nil, fmt.Errorf("invalid device configuration %s: %w", path, err)
	}
	return prog, nil
}
