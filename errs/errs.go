package errs

import (
	"errors"
)

var (
	// ErrParse indicates that an expected JSON shape was missing or malformed.
	ErrParse = errors.New("parse failed")
	// ErrConfig indicates a missing credential or an invalid caller-supplied option.
	ErrConfig = errors.New("invalid config")
	// ErrValidation indicates an out-of-shape URL or an unrecognized response kind.
	ErrValidation = errors.New("validation failed")
	// ErrNetwork indicates a transport failure or a non-2xx HTTP status.
	ErrNetwork = errors.New("network failure")
	// ErrState indicates an operation applied to the wrong entity kind.
	ErrState = errors.New("invalid state")
)

// IsParse reports whether err is classified as a parse failure.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsConfig reports whether err is classified as a configuration failure.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsValidation reports whether err is classified as a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNetwork reports whether err is classified as a network failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsState reports whether err is classified as a state failure.
func IsState(err error) bool {
	return errors.Is(err, ErrState)
}
