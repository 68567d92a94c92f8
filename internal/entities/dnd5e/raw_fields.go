package dnd5e

// RawFields is a partially filled character sheet candidate keyed by field
// name. Values keep whatever representation they arrived in (chat
// extraction, JSON, protobuf Struct) until the schema validates them.
type RawFields map[string]any

// Has reports whether a field is present with a non-nil value
func (r RawFields) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Clone returns a shallow copy
func (r RawFields) Clone() RawFields {
	out := make(RawFields, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r overlaid with the non-nil values of update
func (r RawFields) Merge(update RawFields) RawFields {
	out := r.Clone()
	for k, v := range update {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Without returns a copy of r with the given fields removed
func (r RawFields) Without(fields ...string) RawFields {
	out := r.Clone()
	for _, f := range fields {
		delete(out, f)
	}
	return out
}
