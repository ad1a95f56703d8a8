package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDelay is returned when a continuation is scheduled with a negative or NaN delay.
	ErrInvalidDelay = errors.New("invalid delay")

	// ErrReleaseWithoutHold is returned when a teller is released that was never granted.
	ErrReleaseWithoutHold = errors.New("release without hold")

	// ErrConfiguration matches every *ConfigError via errors.Is.
	ErrConfiguration = errors.New("configuration error")
)

// ConfigError reports a Config field rejected by Validate.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) true for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}
