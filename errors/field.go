package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name to err, so that validation failures of a
// message or model can be traced to the offending attribute. Nil errors stay
// nil.
//
// Field names use the Go spelling, for example RegistrationEndTs. Nested
// fields are joined with a dot (Amount.Ticker) and list elements are named
// by their index (Deposits.2.Amount).
func Field(name string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField adds a field error to errs. It is a no-op when fieldErr is nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors returns every error created for the given field name. A field
// error hides the errors it wraps, so a match on Amount does not also return
// a nested Amount.Ticker failure.
func FieldErrors(err error, name string) []error {
	var found []error
	walkFields(err, func(e error, field string) bool {
		if field != name {
			return true
		}
		found = append(found, e)
		return false
	})
	return found
}

// walkFields visits the field errors contained in err, descending into
// multi errors and causes. Returning false from visit stops the descent into
// that error.
func walkFields(err error, visit func(e error, field string) bool) {
	for !errIsNil(err) {
		if f, ok := err.(fielder); ok {
			if !visit(err, f.Field()) {
				return
			}
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				walkFields(e, visit)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
