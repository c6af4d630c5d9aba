// Package validation collects field-level problems for a single request. A
// Result is a plain value threaded through a handler; it replaces any notion
// of ambient per-request validation state.
package validation

import (
	"strings"

	dErrors "pokereview/pkg/domain-errors"
)

// MaxNameLength bounds every name and title field.
const MaxNameLength = 256

// Result accumulates messages keyed by field name. The zero value is valid
// and reports no errors.
type Result struct {
	fields map[string][]string
}

// Add records a message for field.
func (r *Result) Add(field, message string) {
	if r.fields == nil {
		r.fields = make(map[string][]string)
	}
	r.fields[field] = append(r.fields[field], message)
}

// Valid reports whether no messages were recorded.
func (r *Result) Valid() bool {
	return len(r.fields) == 0
}

// Fields returns the recorded messages.
func (r *Result) Fields() map[string][]string {
	return r.fields
}

// Err converts the result into a validation domain error, or nil when valid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "one or more validation errors occurred").WithFields(r.fields)
}

// Required records a message when value is blank after trimming.
func (r *Result) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		r.Add(field, field+" is required")
		return
	}
	if len(value) > MaxNameLength {
		r.Add(field, field+" must be 256 characters or less")
	}
}
