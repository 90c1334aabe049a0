package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the schema package.
var (
	// ErrUnknownKey is returned for a key the schema does not declare.
	ErrUnknownKey = errors.New("schema: unknown key")

	// ErrMissingKey is returned when a required key is absent.
	ErrMissingKey = errors.New("schema: required key missing")

	// ErrInvalidValue is returned when a validator rejects a value.
	ErrInvalidValue = errors.New("schema: invalid value")
)

// ValidationError reports one configuration problem.
type ValidationError struct {
	// Path locates the offending key, outermost first (e.g. ["climate[1]", "id"]).
	Path []string

	// Constraint describes what was expected.
	Constraint string

	// Err is one of ErrUnknownKey, ErrMissingKey or ErrInvalidValue.
	Err error
}

// PathString joins Path with dots.
func (e *ValidationError) PathString() string {
	return strings.Join(e.Path, ".")
}

func (e *ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Constraint
	}
	return fmt.Sprintf("%s: %s", e.PathString(), e.Constraint)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Errors is a list of validation problems found in one pass.
type Errors []*ValidationError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "no configuration errors"
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d configuration errors: %s", len(e), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, ve := range e {
		out[i] = ve
	}
	return out
}

// WithPrefix returns a copy of the list with prefix prepended to every path.
func (e Errors) WithPrefix(prefix ...string) Errors {
	out := make(Errors, len(e))
	for i, ve := range e {
		path := make([]string, 0, len(prefix)+len(ve.Path))
		path = append(path, prefix...)
		path = append(path, ve.Path...)
		out[i] = &ValidationError{Path: path, Constraint: ve.Constraint, Err: ve.Err}
	}
	return out
}

// Invalid builds a single-key ErrInvalidValue error.
func Invalid(key, constraint string) *ValidationError {
	return &ValidationError{Path: []string{key}, Constraint: constraint, Err: ErrInvalidValue}
}
