package cast

import (
	"errors"
	"fmt"
)

// ErrParse marks input a date based cast could not interpret.
var ErrParse = errors.New("cast: unparsable value")

// ParseError captures the failing cast, attribute and input.
type ParseError struct {
	Cast  Kind
	Key   string
	Value any
	Err   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cast: %s key=%q value=%v: %v", e.Cast, e.Key, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrParse) match every ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
