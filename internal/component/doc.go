// Package component turns a device configuration document into generated
// setup code.
//
// A Catalog holds the Platforms the build knows about. Parse (or LoadFile)
// reads a YAML document, Validate checks every entry against its platform's
// schema and collects all problems in one pass, and Generate calls each
// platform's ToCode exactly once in priority order. Build runs both steps and
// never generates anything when validation fails.
package component
