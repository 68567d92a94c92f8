package charactersheet

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/sheetform/internal/errors"
)

// Violation names a field and why its value was rejected
type Violation = errors.FieldViolation

// Failure is the structured report of a candidate that could not become a
// sheet. It is data for the conversation to show the user, not a fault.
type Failure struct {
	Violations []Violation
	Missing    []string
}

func (f *Failure) add(field, reason string) {
	f.Violations = append(f.Violations, Violation{Field: field, Reason: reason})
}

// HasProblems reports whether anything is invalid or missing
func (f *Failure) HasProblems() bool {
	return f != nil && (len(f.Violations) > 0 || len(f.Missing) > 0)
}

// Messages renders each violation as "field: reason"
func (f *Failure) Messages() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.Violations))
	for i, v := range f.Violations {
		out[i] = v.String()
	}
	return out
}

// InvalidFields returns the names of the fields with violations
func (f *Failure) InvalidFields() []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]bool, len(f.Violations))
	var fields []string
	for _, v := range f.Violations {
		if !seen[v.Field] {
			seen[v.Field] = true
			fields = append(fields, v.Field)
		}
	}
	return fields
}

// Error implements error
func (f *Failure) Error() string {
	if !f.HasProblems() {
		return "character sheet is valid"
	}

	var parts []string
	if msgs := f.Messages(); len(msgs) > 0 {
		parts = append(parts, fmt.Sprintf("invalid fields: %s", strings.Join(msgs, "; ")))
	}
	if len(f.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing fields: %s", strings.Join(f.Missing, ", ")))
	}
	return strings.Join(parts, "; ")
}

// ToError converts the failure to an InvalidArgument error whose metadata
// carries one violation per invalid or missing field.
func (f *Failure) ToError() error {
	if !f.HasProblems() {
		return nil
	}

	verr := errors.NewValidationError()
	for _, v := range f.Violations {
		verr.AddFieldError(v.Field, v.Reason)
	}
	for _, field := range f.Missing {
		verr.AddFieldError(field, "is required")
	}
	return verr.ToError()
}
