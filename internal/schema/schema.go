package schema

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
)

// Validator checks one raw value and returns its normalised form.
// The error message describes the expected constraint.
type Validator func(v any) (any, error)

// Field is one entry of a schema table.
type Field struct {
	Key         string
	Required    bool
	Default     any
	HasDefault  bool
	Validate    Validator
	Description string
}

// Required declares a key that must be present.
func Required(key string, v Validator) Field {
	return Field{Key: key, Required: true, Validate: v}
}

// Optional declares a key that may be absent; absent keys are left out of the record.
func Optional(key string, v Validator) Field {
	return Field{Key: key, Validate: v}
}

// OptionalDefault declares a key that takes def when absent.
// def must already be in normalised form.
func OptionalDefault(key string, def any, v Validator) Field {
	return Field{Key: key, Default: def, HasDefault: true, Validate: v}
}

// KeyID is the configuration key that carries an instance identifier.
const KeyID = "id"

// DeclareID is the required "id" field declaring a new instance of class.
func DeclareID(class *codegen.Class) Field {
	return Field{
		Key:         KeyID,
		Required:    true,
		Validate:    idValidator(class),
		Description: fmt.Sprintf("identifier of the %s instance", class.Name()),
	}
}

// UseID is an optional reference to an existing instance of class.
func UseID(key string, class *codegen.Class) Field {
	return Field{Key: key, Validate: idValidator(class)}
}

// UseIDDefault is a reference to an instance of class that, when omitted,
// resolves to the only such instance at generation time.
func UseIDDefault(key string, class *codegen.Class) Field {
	return Field{
		Key:        key,
		Default:    codegen.ID{Class: class, Auto: true},
		HasDefault: true,
		Validate:   idValidator(class),
	}
}

// Schema is an ordered, read-only table of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields. A later field replaces an earlier one
// with the same key, keeping the earlier position.
func New(fields ...Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	s.add(fields)
	return s
}

func (s *Schema) add(fields []Field) {
	for _, f := range fields {
		if i, ok := s.index[f.Key]; ok {
			s.fields[i] = f
			continue
		}
		s.index[f.Key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
}

// Extend returns a new schema holding s's fields plus fields.
// s is not modified.
func (s *Schema) Extend(fields ...Field) *Schema {
	out := &Schema{
		fields: make([]Field, len(s.fields), len(s.fields)+len(fields)),
		index:  make(map[string]int, len(s.fields)+len(fields)),
	}
	copy(out.fields, s.fields)
	for k, v := range s.index {
		out.index[k] = v
	}
	out.add(fields)
	return out
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Keys returns the declared keys in order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}

// Field looks up a field by key.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Validate checks entry against the schema.
//
// On success the returned record holds a normalised value for every present
// key and every defaulted key. On failure the error is an Errors list and the
// record is nil. Validate has no side effects.
func (s *Schema) Validate(entry map[string]any) (Record, error) {
	var errs Errors
	rec := make(Record, len(s.fields))

	for _, f := range s.fields {
		raw, present := entry[f.Key]
		if !present || raw == nil {
			switch {
			case f.Required:
				errs = append(errs, &ValidationError{
					Path:       []string{f.Key},
					Constraint: "required key missing",
					Err:        ErrMissingKey,
				})
			case f.HasDefault:
				rec[f.Key] = f.Default
			}
			continue
		}

		if f.Validate == nil {
			rec[f.Key] = raw
			continue
		}
		v, err := f.Validate(raw)
		if err != nil {
			errs = append(errs, Invalid(f.Key, err.Error()))
			continue
		}
		rec[f.Key] = v
	}

	var unknown []string
	for k := range entry {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, &ValidationError{
			Path:       []string{k},
			Constraint: fmt.Sprintf("unknown key, valid keys are %v", s.Keys()),
			Err:        ErrUnknownKey,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return rec, nil
}
