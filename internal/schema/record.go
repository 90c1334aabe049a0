package schema

import (
	"sort"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/codegen"
)

// Record is a validated configuration entry.
//
// Values are in the normalised form produced by the schema's validators.
// Accessors return the zero value for absent keys or mismatched types;
// use Has to tell the two apart.
type Record map[string]any

// ID returns the declared identifier.
func (r Record) ID() codegen.ID {
	id, _ := r[KeyID].(codegen.ID)
	return id
}

// Ref returns the reference stored under key.
func (r Record) Ref(key string) (codegen.ID, bool) {
	id, ok := r[key].(codegen.ID)
	return id, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Get returns the raw normalised value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

// String returns the string stored under key.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Bool returns the bool stored under key.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Float returns the float stored under key.
func (r Record) Float(key string) float64 {
	f, _ := r[key].(float64)
	return f
}

// Int returns the int stored under key.
func (r Record) Int(key string) int {
	i, _ := r[key].(int)
	return i
}

// Duration returns the time period stored under key.
func (r Record) Duration(key string) time.Duration {
	d, _ := r[key].(time.Duration)
	return d
}

// Keys returns the present keys sorted alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a shallow copy of the record as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
