// Package mbishi is the IR climate platform for Mitsubishi-style air
// conditioners that use a 19-byte frame with inverted check bytes.
//
// The package declares the platform (schema and setup code generation),
// the frame codec and the runtime unit constructor.
package mbishi
