package charactersheet

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// placeholders are values a language model emits for "not given yet"
var placeholders = map[string]bool{
	"null":    true,
	"none":    true,
	"unknown": true,
	"missing": true,
	"n/a":     true,
}

// aliases maps alternate spellings of field names to the sheet field. When
// several aliases of one field are present the earliest entry wins.
var aliases = []struct {
	alias string
	field string
}{
	{"class_", dnd5e.FieldClass},
	{"hp", dnd5e.FieldHealthPoints},
	{"hit_points", dnd5e.FieldHealthPoints},
	{"ac", dnd5e.FieldArmorClass},
	{"armour_class", dnd5e.FieldArmorClass},
}

// Sanitize maps field aliases, drops nil, empty and placeholder values and
// keys that are not sheet fields, and trims strings. Canonical keys win over
// aliases.
func Sanitize(raw dnd5e.RawFields) dnd5e.RawFields {
	out := make(dnd5e.RawFields, len(raw))
	keys := make([]string, 0, len(raw))
	for field, value := range raw {
		keys = append(keys, field)
		if !dnd5e.IsRequiredField(field) {
			continue
		}
		if value, ok := cleanValue(value); ok {
			out[field] = value
		}
	}

	sort.Strings(keys)
	for _, a := range aliases {
		if out.Has(a.field) || raw.Has(a.field) {
			continue
		}
		for _, key := range keys {
			if strings.ToLower(key) != a.alias {
				continue
			}
			if value, ok := cleanValue(raw[key]); ok {
				out[a.field] = value
				break
			}
		}
	}
	return out
}

// cleanValue trims strings and reports false for nil, empty and
// placeholder values
func cleanValue(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || placeholders[strings.ToLower(s)] {
			return nil, false
		}
		return s, true
	}
	return value, true
}
