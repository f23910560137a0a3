package validation

import (
	"errors"
	"sort"
	"strings"
)

// FormField is the key for errors that belong to the whole record.
const FormField = "__all__"

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Add keeps the first message reported for a field.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Merge copies other into e without overwriting existing messages.
func (e Errors) Merge(other Errors) {
	for k, v := range other {
		e.Add(k, v)
	}
}

// Err returns nil when there are no errors, so callers can return it directly.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Form builds a single form-level error.
func Form(msg string) Errors {
	return Errors{FormField: msg}
}

// Field builds a single field error.
func Field(field, msg string) Errors {
	return Errors{field: msg}
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
