package page

import "fmt"

// MissingFieldError reports a required metadata field that is absent or malformed.
// Field is a dotted path such as "series.number".
type MissingFieldError struct {
	Field  string
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("metadata field %q is missing", e.Field)
	}
	return fmt.Sprintf("metadata field %q is missing or invalid: %s", e.Field, e.Reason)
}

// UnknownPageTypeError reports a type tag with no page kind behind it.
type UnknownPageTypeError struct {
	Type string
}

func (e *UnknownPageTypeError) Error() string {
	return fmt.Sprintf("unknown page type %q", e.Type)
}
