package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every request validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the request parameter that failed validation.
type InvalidInputError struct {
	Param  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match any InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(param, format string, args ...interface{}) error {
	return &InvalidInputError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// ParamOf returns the offending parameter name if err is an InvalidInputError.
func ParamOf(err error) string {
	var ie *InvalidInputError
	if errors.As(err, &ie) {
		return ie.Param
	}
	return ""
}
