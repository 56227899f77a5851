package lightpillar

import "fmt"

// Device is the rendering context provider. EbitenDevice draws with a Kage
// program on the GPU; SoftwareDevice evaluates the same field on the CPU.
type Device interface {
	// Name identifies the device in log output.
	Name() string
	// Probe reports whether a rendering context can be obtained. It may
	// allocate throwaway resources but must not change shared state.
	Probe() error
	// NewTarget allocates a drawable of w×h device pixels.
	NewTarget(w, h int) (Target, error)
	// NewProgram compiles the field program.
	NewProgram() (Program, error)
}

// Target is a drawable owned by a Surface.
type Target interface {
	// Size returns the current size in device pixels.
	Size() (w, h int)
	// Resize reallocates the target. Previous contents are lost.
	Resize(w, h int) error
	// Release frees the target. Later calls are no-ops.
	Release()
}

// Program is the compiled field program plus its uniform bindings.
type Program interface {
	// Draw renders one full-surface pass of the field into dst.
	Draw(dst Target, u *Uniforms) error
	// Release frees the program. Later calls are no-ops.
	Release()
}

// probeDevice runs d.Probe and turns both errors and panics into
// ErrCapabilityUnsupported.
func probeDevice(d Device) (err error) {
	if d == nil {
		return fmt.Errorf("%w: no device", ErrCapabilityUnsupported)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCapabilityUnsupported, d.Name(), r)
		}
	}()
	if perr := d.Probe(); perr != nil {
		return fmt.Errorf("%w: %s: %v", ErrCapabilityUnsupported, d.Name(), perr)
	}
	return nil
}
