package errors

import (
	"fmt"
	"strings"
)

// MetaValidationErrors is the metadata key holding []FieldViolation
const MetaValidationErrors = "validation_errors"

// FieldViolation describes why a single field was rejected
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// String renders the violation as "field: reason"
func (f FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// ValidationError collects violations for multiple fields in the order they
// were added.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if len(v.Violations) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v.Violations))
	for i, violation := range v.Violations {
		parts[i] = violation.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// NewValidationError creates a new validation error
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// AddFieldError adds an error for a specific field
func (v *ValidationError) AddFieldError(field, message string) {
	v.Violations = append(v.Violations, FieldViolation{Field: field, Reason: message})
}

// HasErrors returns true if there are any validation errors
func (v *ValidationError) HasErrors() bool {
	return len(v.Violations) > 0
}

// Fields returns the distinct field names with violations, in order
func (v *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(v.Violations))
	var fields []string
	for _, violation := range v.Violations {
		if seen[violation.Field] {
			continue
		}
		seen[violation.Field] = true
		fields = append(fields, violation.Field)
	}
	return fields
}

// ToError converts the validation error to an InvalidArgument *Error
func (v *ValidationError) ToError() *Error {
	if !v.HasErrors() {
		return nil
	}

	violations := make([]FieldViolation, len(v.Violations))
	copy(violations, v.Violations)

	return InvalidArgument(v.Error()).WithMeta(MetaValidationErrors, violations)
}

// ValidationBuilder accumulates field-level validation errors and returns
// nil if none were added.
type ValidationBuilder struct {
	err *ValidationError
}

// NewValidationBuilder creates a new validation builder
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{
		err: NewValidationError(),
	}
}

// Field adds a validation error for a field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.err.AddFieldError(field, message)
	return vb
}

// Fieldf adds a formatted validation error for a field
func (vb *ValidationBuilder) Fieldf(field, format string, args ...interface{}) *ValidationBuilder {
	vb.err.AddFieldError(field, fmt.Sprintf(format, args...))
	return vb
}

// RequiredField adds a required field error
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// Build returns the error if there are validation errors, nil otherwise
func (vb *ValidationBuilder) Build() error {
	if vb.err.HasErrors() {
		return vb.err.ToError()
	}
	return nil
}

// ValidateRequired checks if a string field is present
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidateRange checks if a value is within an inclusive range
func ValidateRange(field string, value, minValue, maxValue int, vb *ValidationBuilder) {
	if value < minValue || value > maxValue {
		vb.Fieldf(field, "must be between %d and %d", minValue, maxValue)
	}
}

// ValidateEnum checks if a value is in a list of allowed values
func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
}
