// Package validation collects field-level input errors so that callers can report
// every violated field at once.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// Error is returned when one or more input fields are invalid.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator accumulates field errors. Only the first error per field is kept.
type Validator struct {
	fields []FieldError
	seen   map[string]struct{}
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{seen: make(map[string]struct{})}
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if ok {
		return
	}
	if _, exists := v.seen[field]; exists {
		return
	}
	v.seen[field] = struct{}{}
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// CheckNotBlank records message for field when value is empty or only whitespace.
func (v *Validator) CheckNotBlank(value, field, message string) {
	v.Check(strings.TrimSpace(value) != "", field, message)
}

// Valid reports whether no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Err returns nil when valid, otherwise an *Error listing the recorded fields in order.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	out := make([]FieldError, len(v.fields))
	copy(out, v.fields)
	return &Error{Fields: out}
}

// FromBinding converts the validator.ValidationErrors produced by gin's binding into an *Error.
// It returns false when err did not come from struct validation (e.g. malformed JSON).
func FromBinding(err error) (*Error, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	v := New()
	for _, fe := range verrs {
		v.Check(false, jsonName(fe.Field()), messageFor(fe))
	}
	return &Error{Fields: v.fields}, true
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
