// Package codegen is the build-time object graph for Gray Logic IR climate
// firmware.
//
// A build turns validated configuration records into a Program: an ordered
// list of setup statements plus a Registry of every instance the statements
// create. The Registry is append-only and is the single place where identifier
// uniqueness is enforced.
//
// # Key Types
//
//   - Namespace / Class: C++ type declarations that instances are created from
//   - ID: the configured identifier of an instance (or a reference to one)
//   - Instance: one generated object with its record and setup calls
//   - Registry: append-only catalogue of instances, keyed by ID
//   - Program: statement list bound to a Registry, rendered to main.cpp
//
// # Usage
//
//	reg := codegen.NewRegistry()
//	prog := codegen.NewProgram(reg)
//
//	inst, err := prog.NewPvariable(codegen.ID{Name: "ac1", Class: mbishi.Class})
//	if err != nil {
//	    return err // codegen.ErrDuplicateID when "ac1" already exists
//	}
//	prog.RegisterComponent(inst)
//	prog.Add(inst, "set_supports_cool", codegen.Literal(true))
//
//	var out bytes.Buffer
//	err = prog.Render(&out, codegen.RenderOptions{Name: "living-room"})
//
// # Thread Safety
//
// Registry is safe for concurrent use; the runtime daemon reads it while the
// build itself is single-threaded. Program is not safe for concurrent use.
package codegen
