package charactersheet

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

var nameLengthMessage = fmt.Sprintf("the length must be between %d and %d", dnd5e.NameMinLength, dnd5e.NameMaxLength)

// Error codes attached to rule failures
const (
	CodeOutOfRange  = "validation_out_of_range"
	CodeNotPositive = "validation_not_positive"
	CodeNotInList   = "validation_not_in_list"
)

// The built-in ozzo Min/Max/In rules treat zero values as empty and skip
// them, which would let level 0 or race "" through. These rules check every
// value they are given.

type betweenRule struct {
	label    string
	min, max int
}

func between(label string, minValue, maxValue int) validation.Rule {
	return betweenRule{label: label, min: minValue, max: maxValue}
}

func (r betweenRule) Validate(value interface{}) error {
	v, isNil := validation.Indirect(value)
	n, ok := v.(int)
	if isNil || !ok {
		return nil
	}
	if n < r.min || n > r.max {
		return validation.NewError(CodeOutOfRange, "{{.label}} must be between {{.min}} and {{.max}}").
			SetParams(map[string]interface{}{"label": r.label, "min": r.min, "max": r.max})
	}
	return nil
}

type positiveRule struct {
	label string
}

func positive(label string) validation.Rule {
	return positiveRule{label: label}
}

func (r positiveRule) Validate(value interface{}) error {
	v, isNil := validation.Indirect(value)
	n, ok := v.(int)
	if isNil || !ok {
		return nil
	}
	if n <= 0 {
		return validation.NewError(CodeNotPositive, "{{.label}} must be greater than 0").
			SetParams(map[string]interface{}{"label": r.label})
	}
	return nil
}

type oneOfRule struct {
	label  string
	plural string
	values []string
}

func oneOf(label, plural string, values []string) validation.Rule {
	return oneOfRule{label: label, plural: plural, values: values}
}

func (r oneOfRule) Validate(value interface{}) error {
	v, isNil := validation.Indirect(value)
	s, ok := v.(string)
	if isNil || !ok {
		return nil
	}
	for _, allowed := range r.values {
		if s == allowed {
			return nil
		}
	}
	return validation.NewError(CodeNotInList, "{{.value}} is an invalid {{.label}}, valid {{.plural}} are: {{.valid}}.").
		SetParams(map[string]interface{}{
			"value":  s,
			"label":  r.label,
			"plural": r.plural,
			"valid":  strings.Join(r.values, ", "),
		})
}
