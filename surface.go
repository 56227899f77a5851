package lightpillar

import (
	"fmt"
	"math"
)

// MaxPixelRatio caps the device pixel ratio used for the surface.
const MaxPixelRatio = 2.0

// clampPixelRatio limits r to [1, MaxPixelRatio]. NaN and non-positive
// ratios become 1.
func clampPixelRatio(r float64) float64 {
	if !(r >= 1) {
		return 1
	}
	return math.Min(r, MaxPixelRatio)
}

// devicePixels converts a logical length to device pixels.
func devicePixels(logical, ratio float64) int {
	if logical <= 0 {
		return 0
	}
	return int(math.Floor(logical * ratio))
}

// Surface owns the drawable target, its size, pixel ratio and blend mode.
// While the container has no area the target is not allocated; the first
// Resize to a positive size allocates it.
type Surface struct {
	device   Device
	target   Target
	ratio    float64
	w, h     int // device pixels
	blend    BlendMode
	released bool
}

// newSurface binds to the container's current content box. A zero-size box
// is not an error; it yields a Surface with no target yet.
func newSurface(d Device, c Container, blend BlendMode) (*Surface, error) {
	s := &Surface{device: d, blend: blend}
	box := c.ContentBox()
	s.ratio = clampPixelRatio(c.DevicePixelRatio())
	s.w = devicePixels(box.Width, s.ratio)
	s.h = devicePixels(box.Height, s.ratio)
	if s.w > 0 && s.h > 0 {
		t, err := d.NewTarget(s.w, s.h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
		}
		s.target = t
	}
	return s, nil
}

// Resize applies a new logical size at the given raw device pixel ratio.
// A zero dimension is recorded but the existing target is kept, so the
// surface simply reports zero size until a usable size arrives.
func (s *Surface) Resize(width, height, ratio float64) error {
	if s.released {
		return nil
	}
	s.ratio = clampPixelRatio(ratio)
	w := devicePixels(width, s.ratio)
	h := devicePixels(height, s.ratio)
	if w <= 0 || h <= 0 {
		s.w, s.h = w, h
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, w, h)
	}
	if s.target == nil {
		t, err := s.device.NewTarget(w, h)
		if err != nil {
			s.w, s.h = 0, 0
			return fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
		}
		s.target = t
		s.w, s.h = w, h
		return nil
	}
	if err := s.target.Resize(w, h); err != nil {
		// The target's size is unknown now; the next usable size reallocates.
		s.target.Release()
		s.target = nil
		s.w, s.h = 0, 0
		return fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
	}
	s.w, s.h = w, h
	return nil
}

// Size returns the surface size in device pixels.
func (s *Surface) Size() (w, h int) { return s.w, s.h }

// PixelRatio returns the clamped device pixel ratio.
func (s *Surface) PixelRatio() float64 { return s.ratio }

// Blend returns the compositing mode for presenting the surface.
func (s *Surface) Blend() BlendMode { return s.blend }

// SetBlend changes the compositing mode.
func (s *Surface) SetBlend(b BlendMode) { s.blend = b }

// Target returns the drawable, or nil before the first usable size and
// after Release.
func (s *Surface) Target() Target { return s.target }

// Drawable reports whether a frame can be drawn right now.
func (s *Surface) Drawable() bool {
	return !s.released && s.target != nil && s.w > 0 && s.h > 0
}

// Release frees the target. Later calls are no-ops.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
}
