package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no error is provided, nil is returned. A single non-nil error is
// returned as it is. Appending a group flattens it, so that the result is
// always a single level of errors.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiErr []error

func (errs multiErr) Error() string {
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(errs), strings.Join(points, "\n\t"))
}

// Unpack returns the grouped errors.
func (errs multiErr) Unpack() []error {
	return errs
}

// ABCICode returns the code of the first error, consistent with a fail fast
// approach.
func (errs multiErr) ABCICode() uint32 {
	return abciCode(errs[0])
}

// unpacker is implemented by errors that group many others.
type unpacker interface {
	Unpack() []error
}
