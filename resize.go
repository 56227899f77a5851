package lightpillar

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// ResizeDebounce is the quiet period after the last viewport change before
// the new size is applied.
const ResizeDebounce = 150 * time.Millisecond

// ResizeController debounces viewport changes and pushes the container's
// size into the surface and the resolution uniform.
type ResizeController struct {
	container Container
	loop      *Loop
	surface   *Surface
	pipeline  *Pipeline
	logger    *log.Logger

	detach  func()
	pending Handle
	fired   int
	closed  bool
}

func newResizeController(c Container, l *Loop, s *Surface, p *Pipeline, logger *log.Logger) *ResizeController {
	return &ResizeController{container: c, loop: l, surface: s, pipeline: p, logger: logger}
}

// Attach starts listening for viewport changes. Calling it twice is a no-op.
func (rc *ResizeController) Attach() {
	if rc.detach != nil || rc.closed {
		return
	}
	rc.detach = rc.container.OnViewportChange(rc.OnViewportChange)
}

// Detach stops listening and cancels a pending resize. The controller
// cannot be reattached.
func (rc *ResizeController) Detach() {
	rc.closed = true
	rc.pending.Cancel()
	rc.pending = Handle{}
	if rc.detach != nil {
		rc.detach()
		rc.detach = nil
	}
}

// OnViewportChange restarts the debounce window.
func (rc *ResizeController) OnViewportChange() {
	if rc.closed {
		return
	}
	rc.pending.Cancel()
	rc.pending = rc.loop.After(ResizeDebounce, rc.apply)
}

// Fired returns how many debounced resizes have been applied.
func (rc *ResizeController) Fired() int { return rc.fired }

func (rc *ResizeController) apply() {
	rc.pending = Handle{}
	if rc.closed {
		return
	}
	rc.fired++
	box := rc.container.ContentBox()
	err := rc.surface.Resize(box.Width, box.Height, rc.container.DevicePixelRatio())
	w, h := rc.surface.Size()
	rc.pipeline.SetUniform(UniformResolution, Vec2{X: float64(w), Y: float64(h)})
	switch {
	case errors.Is(err, ErrZeroDimension):
		rc.logger.Warn("container has zero size; rendering paused", "width", box.Width, "height", box.Height)
	case err != nil:
		rc.logger.Error("resize failed", "err", err)
	default:
		rc.logger.Debug("resized", "width", w, "height", h, "ratio", rc.surface.PixelRatio())
	}
}
