package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCode is returned when a package carries a workout code outside RUN, WLK and SWM.
	ErrUnknownCode = errors.New("unrecognized workout type")
	// ErrMalformedValues is returned when the positional values do not fit the workout's field list.
	ErrMalformedValues = errors.New("malformed workout values")
)

// UnknownCodeError reports the offending code. It matches ErrUnknownCode with errors.Is.
type UnknownCodeError struct {
	Code Code
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownCode, string(e.Code))
}

func (e *UnknownCodeError) Is(target error) bool {
	return target == ErrUnknownCode
}
