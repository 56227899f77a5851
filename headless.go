package lightpillar

import (
	"time"
)

// FrameInterval is the simulated time between headless frames.
const FrameInterval = time.Second / 60

// Headless runs an Effect offscreen on a HeadlessHost with a manual clock.
// Every call to Frame advances the clock by FrameInterval and pumps the
// loop once, which runs exactly one tick.
type Headless struct {
	Host   *HeadlessHost
	Clock  *ManualClock
	Effect *Effect

	frames int
	queue  []func() // synthetic events, one delivered per frame
}

// NewHeadless creates a w×h host and starts an effect on it. A nil
// opts.Device selects a full-resolution SoftwareDevice; opts.Loop is
// replaced by one on the headless clock.
func NewHeadless(cfg Config, w, h float64, opts Options) (*Headless, error) {
	hl := &Headless{
		Host:  NewHeadlessHost(w, h),
		Clock: &ManualClock{},
	}
	if opts.Device == nil {
		opts.Device = NewSoftwareDevice()
	}
	opts.Loop = NewLoop(hl.Clock)
	fx, err := New(hl.Host, cfg, opts)
	if err != nil {
		return nil, err
	}
	hl.Effect = fx
	return hl, nil
}

// Frame delivers at most one queued synthetic event, advances the clock and
// pumps the loop.
func (hl *Headless) Frame() {
	if len(hl.queue) > 0 {
		ev := hl.queue[0]
		copy(hl.queue, hl.queue[1:])
		hl.queue[len(hl.queue)-1] = nil
		hl.queue = hl.queue[:len(hl.queue)-1]
		ev()
	}
	hl.Clock.Advance(FrameInterval)
	hl.Effect.Loop().Pump()
	hl.frames++
}

// Frames runs n frames.
func (hl *Headless) Frames(n int) {
	for i := 0; i < n; i++ {
		hl.Frame()
	}
}

// FrameCount returns how many frames have run.
func (hl *Headless) FrameCount() int { return hl.frames }

// QueuePointer queues a pointer move at client coordinates for the next
// frame.
func (hl *Headless) QueuePointer(x, y float64) {
	hl.queue = append(hl.queue, func() { hl.Host.MovePointer(x, y) })
}

// QueueSweep queues pointer moves linearly interpolated from (fromX, fromY)
// to (toX, toY), one per frame over the given number of frames (minimum 2).
func (hl *Headless) QueueSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		hl.QueuePointer(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// QueueResize queues a container resize for the next frame.
func (hl *Headless) QueueResize(w, h float64) {
	hl.queue = append(hl.queue, func() { hl.Host.Resize(w, h) })
}

// Pending returns the number of queued synthetic events.
func (hl *Headless) Pending() int { return len(hl.queue) }

// Close destroys the effect.
func (hl *Headless) Close() {
	hl.Effect.Destroy()
}
