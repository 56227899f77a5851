package lightpillar

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigError via errors.Is.
	ErrConfiguration = errors.New("lightpillar: invalid configuration")

	// ErrInvalidColorSpec is returned by ResolveColor for unparseable input.
	ErrInvalidColorSpec = errors.New("lightpillar: invalid color spec")

	// ErrCapabilityUnsupported means the device cannot provide an accelerated
	// rendering context. The effect degrades to a transparent background.
	ErrCapabilityUnsupported = errors.New("lightpillar: rendering capability unsupported")

	// ErrSurfaceCreation means a target or program could not be allocated
	// after the probe succeeded. Handled like ErrCapabilityUnsupported.
	ErrSurfaceCreation = errors.New("lightpillar: surface creation failed")

	// ErrZeroDimension is returned by Pipeline.DrawFrame when the surface has
	// no area. Nothing is drawn.
	ErrZeroDimension = errors.New("lightpillar: zero surface dimension")
)

// ConfigError reports a single invalid Config field. It is the only error
// New surfaces to the caller.
type ConfigError struct {
	Field  string
	Reason string
	Err    error // optional cause, e.g. ErrInvalidColorSpec
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lightpillar: config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("lightpillar: config %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) true for any *ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
