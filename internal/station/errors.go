package station

import (
	"errors"
	"fmt"
)

// KindInvalidArgument is the machine-readable kind reported for bad queries.
const KindInvalidArgument = "InvalidArgument"

// ErrInvalidArgument matches any *InvalidArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError is returned when a nearest-station query fails validation.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InvalidArgumentError) Kind() string {
	return KindInvalidArgument
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func NewInvalidArgumentError(field, message string) *InvalidArgumentError {
	return &InvalidArgumentError{
		Field:   field,
		Message: message,
	}
}
