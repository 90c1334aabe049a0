package codegen

import "errors"

// Domain errors for the codegen package.
var (
	// ErrDuplicateID is returned when an instance ID is registered twice.
	ErrDuplicateID = errors.New("codegen: duplicate id")

	// ErrUnknownID is returned when a referenced ID was never declared.
	ErrUnknownID = errors.New("codegen: unknown id")

	// ErrAmbiguousID is returned when an automatic reference matches more than one instance.
	ErrAmbiguousID = errors.New("codegen: ambiguous id")

	// ErrClassMismatch is returned when a referenced instance has an incompatible class.
	ErrClassMismatch = errors.New("codegen: class mismatch")

	// ErrInvalidInstance is returned when an instance is nil or lacks an ID or class.
	ErrInvalidInstance = errors.New("codegen: invalid instance")
)
