package schema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Names that would clash with the generated translation unit.
var reservedIdentifiers = map[string]struct{}{
	"App": {}, "auto": {}, "bool": {}, "break": {}, "case": {}, "class": {},
	"const": {}, "delete": {}, "double": {}, "else": {}, "enum": {}, "esphome": {},
	"float": {}, "for": {}, "if": {}, "int": {}, "loop": {}, "namespace": {},
	"new": {}, "return": {}, "setup": {}, "static": {}, "std": {}, "struct": {},
	"switch": {}, "this": {}, "void": {}, "while": {},
}

// String accepts any scalar and returns its string form.
func String(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool, int, int64, float64:
		return fmt.Sprint(t), nil
	default:
		return nil, fmt.Errorf("expected string, got %T", v)
	}
}

// NonEmptyString accepts a string with at least one non-space character.
func NonEmptyString(v any) (any, error) {
	s, err := String(v)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.(string)) == "" {
		return nil, errors.New("expected non-empty string")
	}
	return s, nil
}

// Boolean accepts a bool or one of true/false/yes/no/on/off/enable/disable.
func Boolean(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "enable":
			return true, nil
		case "false", "no", "off", "disable":
			return false, nil
		}
	}
	return nil, fmt.Errorf("expected boolean, got %v", v)
}

// Float accepts a number or a numeric string.
func Float(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("expected number, got %v", v)
}

// Int accepts an integral number or an integer string.
func Int(v any) (any, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t == math.Trunc(t) {
			return int(t), nil
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return i, nil
		}
	}
	return nil, fmt.Errorf("expected integer, got %v", v)
}

// IntRange accepts an integer in [lo, hi].
func IntRange(lo, hi int) Validator {
	return func(v any) (any, error) {
		i, err := Int(v)
		if err != nil {
			return nil, err
		}
		if n := i.(int); n < lo || n > hi {
			return nil, fmt.Errorf("expected integer between %d and %d, got %d", lo, hi, n)
		}
		return i, nil
	}
}

// FloatRange accepts a number in [lo, hi].
func FloatRange(lo, hi float64) Validator {
	return func(v any) (any, error) {
		f, err := Float(v)
		if err != nil {
			return nil, err
		}
		if n := f.(float64); n < lo || n > hi {
			return nil, fmt.Errorf("expected number between %g and %g, got %g", lo, hi, n)
		}
		return f, nil
	}
}

// PercentInt accepts "50%" or 50 and returns an integer percentage in [lo, hi].
func PercentInt(lo, hi int) Validator {
	inRange := IntRange(lo, hi)
	return func(v any) (any, error) {
		if s, ok := v.(string); ok {
			v = strings.TrimSuffix(strings.TrimSpace(s), "%")
		}
		return inRange(v)
	}
}

// OneOf accepts one of options, compared case-insensitively.
// The result is lower case.
func OneOf(options ...string) Validator {
	set := make(map[string]struct{}, len(options))
	for _, o := range options {
		set[strings.ToLower(o)] = struct{}{}
	}
	return func(v any) (any, error) {
		s, ok := v.(string)
		if ok {
			s = strings.ToLower(strings.TrimSpace(s))
			if _, found := set[s]; found {
				return s, nil
			}
		}
		return nil, fmt.Errorf("expected one of %v, got %v", options, v)
	}
}

// Identifier accepts a C++ identifier that does not clash with generated names.
func Identifier(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected identifier, got %T", v)
	}
	if !identifierRegex.MatchString(s) {
		return nil, fmt.Errorf("invalid identifier %q, use letters, digits and underscores and do not start with a digit", s)
	}
	if _, reserved := reservedIdentifiers[s]; reserved {
		return nil, fmt.Errorf("identifier %q is reserved", s)
	}
	return s, nil
}

// TimePeriod accepts a duration string ("10ms", "2s", "1min") or an integer
// number of milliseconds.
func TimePeriod(v any) (any, error) {
	switch t := v.(type) {
	case int:
		if t >= 0 {
			return time.Duration(t) * time.Millisecond, nil
		}
	case string:
		s := strings.TrimSpace(t)
		if strings.HasSuffix(s, "min") {
			s = strings.TrimSuffix(s, "in")
		}
		d, err := time.ParseDuration(s)
		if err == nil && d >= 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("expected time period such as 10ms or 2s, got %v", v)
}

// Topic accepts an MQTT topic name without wildcards.
func Topic(v any) (any, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, errors.New("expected MQTT topic")
	}
	if strings.ContainsAny(s, "+#") {
		return nil, fmt.Errorf("topic %q must not contain wildcards", s)
	}
	if s != strings.TrimSpace(s) {
		return nil, fmt.Errorf("topic %q must not start or end with whitespace", s)
	}
	return s, nil
}

// idValidator accepts an identifier and tags it with class. The same form
// serves declarations and references; the field decides which it is.
func idValidator(class *codegen.Class) Validator {
	return func(v any) (any, error) {
		name, err := Identifier(v)
		if err != nil {
			return nil, err
		}
		return codegen.ID{Name: name.(string), Class: class}, nil
	}
}
