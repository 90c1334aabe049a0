// Package schema validates raw configuration entries into typed records.
//
// A Schema is an ordered table of Fields. Schemas are composed by extension:
// Extend returns a new table holding the base entries plus the extra fields,
// so a platform schema is its capability's table plus one declared ID.
//
// Validation never stops at the first problem. Every unknown key, missing
// required key and rejected value becomes a *ValidationError naming the key
// path and the expected constraint, and the whole list is returned as Errors.
//
//	var ConfigSchema = climateir.WithReceiverSchema.Extend(schema.DeclareID(Class))
//
//	rec, err := ConfigSchema.Validate(entry)
//	if errors.Is(err, schema.ErrMissingKey) {
//	    // e.g. "id: required key missing"
//	}
package schema
