package protocgen

import (
	"errors"
	"fmt"
)

// ErrMissingInputFile is returned when a command that needs schema files is
// given none.
var ErrMissingInputFile = errors.New("missing input file: at least one .proto file must be given")

// InvalidArgumentValueError is returned when a flag is given a value that
// cannot be parsed.
type InvalidArgumentValueError struct {
	Flag  string
	Value string
	Err   error
}

func (e *InvalidArgumentValueError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid value %q for %s", e.Value, e.Flag)
	}
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Flag, e.Err)
}

func (e *InvalidArgumentValueError) Unwrap() error {
	return e.Err
}

// UnknownOptionError is returned for an unrecognized flag.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unrecognized option: %s", e.Option)
}

// ConflictingFlagsError is returned when a toggle and its negation are both
// given.
type ConflictingFlagsError struct {
	Flag, Negation string
}

func (e *ConflictingFlagsError) Error() string {
	return fmt.Sprintf("conflicting flags: %s and %s cannot both be given", e.Flag, e.Negation)
}
