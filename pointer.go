package lightpillar

import "time"

// PointerThrottle is the minimum interval between accepted pointer updates.
const PointerThrottle = 16 * time.Millisecond

// PointerController converts pointer motion into the normalized pointer
// uniform. Events arriving within PointerThrottle of the last accepted one
// are dropped, not queued.
type PointerController struct {
	container Container
	clock     Clock
	state     *RenderState
	detach    func()

	last     time.Duration
	accepted int
	dropped  int
	primed   bool
}

func newPointerController(c Container, clock Clock, st *RenderState) *PointerController {
	return &PointerController{container: c, clock: clock, state: st}
}

// Attach starts listening to the container. Calling it twice is a no-op.
func (pc *PointerController) Attach() {
	if pc.detach != nil {
		return
	}
	pc.detach = pc.container.OnPointerMove(pc.OnPointerMove)
}

// Detach stops listening. Safe to call repeatedly.
func (pc *PointerController) Detach() {
	if pc.detach != nil {
		pc.detach()
		pc.detach = nil
	}
}

// Attached reports whether the controller is listening.
func (pc *PointerController) Attached() bool { return pc.detach != nil }

// OnPointerMove handles a pointer at client coordinates (x, y).
func (pc *PointerController) OnPointerMove(x, y float64) {
	now := pc.clock.Now()
	if pc.primed && now-pc.last < PointerThrottle {
		pc.dropped++
		return
	}
	box := pc.container.ContentBox()
	if box.Empty() {
		pc.dropped++
		return
	}
	pc.primed = true
	pc.last = now
	pc.accepted++
	pc.state.Pointer = normalizePointer(box, x, y)
}

// Stats returns the number of accepted and dropped events.
func (pc *PointerController) Stats() (accepted, dropped int) {
	return pc.accepted, pc.dropped
}

// normalizePointer maps client coordinates to [-1,1]² relative to box, with
// +Y pointing up. Points outside the box map outside the range.
func normalizePointer(box Rect, x, y float64) Vec2 {
	return Vec2{
		X: (x-box.X)/box.Width*2 - 1,
		Y: -((y-box.Y)/box.Height*2 - 1),
	}
}
