package chapter

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists or conflict state")
	ErrInvalid  = errors.New("invalid input")
)

// Invalidf returns an error wrapping ErrInvalid with a field-level message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
