package lightpillar

// Container is the display region the effect renders into. Hosts implement
// it: WindowHost for an Ebitengine window, HeadlessHost for offscreen use.
// All callbacks are delivered on the goroutine that pumps the effect's Loop.
type Container interface {
	// ContentBox returns the region in logical (CSS-like) pixels. X and Y
	// are the origin used to make pointer coordinates container-relative.
	ContentBox() Rect
	// DevicePixelRatio returns device pixels per logical pixel.
	DevicePixelRatio() float64
	// SetBackground sets the color shown behind the effect.
	SetBackground(c Color)
	// OnPointerMove registers fn for pointer motion in client coordinates
	// and returns a function that removes it.
	OnPointerMove(fn func(x, y float64)) (detach func())
	// OnViewportChange registers fn for size changes and returns a function
	// that removes it.
	OnViewportChange(fn func()) (detach func())
}

// listeners is an ordered set of callbacks with stable removal.
type listeners[F any] struct {
	next  uint32
	items []listener[F]
}

type listener[F any] struct {
	id uint32
	fn F
}

func (l *listeners[F]) add(fn F) (detach func()) {
	l.next++
	id := l.next
	l.items = append(l.items, listener[F]{id: id, fn: fn})
	return func() {
		for i, it := range l.items {
			if it.id == id {
				l.items = append(l.items[:i], l.items[i+1:]...)
				return
			}
		}
	}
}

// snapshot returns the current callbacks so handlers may detach while the
// caller iterates.
func (l *listeners[F]) snapshot() []F {
	out := make([]F, len(l.items))
	for i, it := range l.items {
		out[i] = it.fn
	}
	return out
}

func (l *listeners[F]) count() int { return len(l.items) }

// HeadlessHost is an in-memory Container. Size changes and pointer motion
// are injected by the caller; nothing is displayed.
type HeadlessHost struct {
	box        Rect
	ratio      float64
	background Color
	bgSet      bool

	pointer  listeners[func(x, y float64)]
	viewport listeners[func()]
}

// NewHeadlessHost creates a host with a w×h logical content box at the
// origin and a pixel ratio of 1.
func NewHeadlessHost(w, h float64) *HeadlessHost {
	return &HeadlessHost{box: Rect{Width: w, Height: h}, ratio: 1}
}

// ContentBox implements Container.
func (h *HeadlessHost) ContentBox() Rect { return h.box }

// DevicePixelRatio implements Container.
func (h *HeadlessHost) DevicePixelRatio() float64 { return h.ratio }

// SetBackground implements Container.
func (h *HeadlessHost) SetBackground(c Color) {
	h.background = c
	h.bgSet = true
}

// Background returns the last color passed to SetBackground and whether it
// was ever called.
func (h *HeadlessHost) Background() (Color, bool) { return h.background, h.bgSet }

// OnPointerMove implements Container.
func (h *HeadlessHost) OnPointerMove(fn func(x, y float64)) func() {
	return h.pointer.add(fn)
}

// OnViewportChange implements Container.
func (h *HeadlessHost) OnViewportChange(fn func()) func() {
	return h.viewport.add(fn)
}

// Listeners returns the number of registered pointer and viewport callbacks.
func (h *HeadlessHost) Listeners() (pointer, viewport int) {
	return h.pointer.count(), h.viewport.count()
}

// MovePointer delivers a pointer move at client coordinates (x, y).
func (h *HeadlessHost) MovePointer(x, y float64) {
	for _, fn := range h.pointer.snapshot() {
		fn(x, y)
	}
}

// Resize changes the logical content size and notifies viewport listeners.
func (h *HeadlessHost) Resize(w, hh float64) {
	h.box.Width, h.box.Height = w, hh
	for _, fn := range h.viewport.snapshot() {
		fn()
	}
}

// SetDevicePixelRatio changes the pixel ratio and notifies viewport
// listeners, as a monitor change would.
func (h *HeadlessHost) SetDevicePixelRatio(r float64) {
	h.ratio = r
	for _, fn := range h.viewport.snapshot() {
		fn()
	}
}

// MoveTo changes the content box origin without resizing.
func (h *HeadlessHost) MoveTo(x, y float64) {
	h.box.X, h.box.Y = x, y
}
