package market

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks configuration and construction-time invariant
	// violations. Initialization must abort on it.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrMalformedPayload marks a structural wire violation. It is fatal to the
	// message being processed only.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownSymbol is returned when a native symbol has no entry in the
	// symbol index.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnknownChannel is returned when a channel string cannot be classified.
	ErrUnknownChannel = errors.New("unknown channel")
)

// PayloadError wraps a structural wire violation with the channel and raw frame
// that produced it.
type PayloadError struct {
	Channel string
	Raw     []byte
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("channel %q: %v (raw=%s)", e.Channel, e.Err, e.Raw)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Is reports every PayloadError as ErrMalformedPayload.
func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}
