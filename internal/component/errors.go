package component

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the component package.
var (
	// ErrDuplicatePlatform is returned when a catalogue registers the same
	// domain/platform pair twice.
	ErrDuplicatePlatform = errors.New("component: duplicate platform")

	// ErrMissingDependency is returned when a platform auto-loads a
	// component the catalogue does not have.
	ErrMissingDependency = errors.New("component: missing dependency")

	// ErrUnknownComponent is reported for a domain or platform the catalogue
	// does not have.
	ErrUnknownComponent = errors.New("component: unknown component")

	// ErrInvalidDocument is returned when the YAML document has the wrong shape.
	ErrInvalidDocument = errors.New("component: invalid document")
)

// RegistrationError reports a failure inside a platform's ToCode.
// Err is the error ToCode returned, unchanged.
type RegistrationError struct {
	Path []string
	ID   string
	Err  error
}

func (e *RegistrationError) Error() string {
	where := strings.Join(e.Path, ".")
	if e.ID != "" {
		where = fmt.Sprintf("%s (%s)", where, e.ID)
	}
	return fmt.Sprintf("registering %s: %v", where, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
