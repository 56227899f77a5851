package lightpillar

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TimeStep is the effect-time increment per frame, scaled by the rotation
// speed. The driver does not measure wall-clock time: a slower frame rate
// slows the animation down.
const TimeStep = 0.016

// DriverState is the lifecycle of a Driver.
type DriverState uint8

const (
	DriverIdle    DriverState = iota // created, not started
	DriverRunning                    // ticking
	DriverStopped                    // terminal
)

func (s DriverState) String() string {
	switch s {
	case DriverIdle:
		return "idle"
	case DriverRunning:
		return "running"
	case DriverStopped:
		return "stopped"
	}
	return "unknown"
}

// Driver is the frame loop. Each tick advances effect time, steps the
// fade-in tween, draws one frame and schedules the next tick.
type Driver struct {
	loop     *Loop
	pipeline *Pipeline
	state    *RenderState
	surface  *Surface
	speed    float64
	fade     *gween.Tween
	logger   *log.Logger
	debug    bool

	status  DriverState
	next    Handle
	ticks   int
	skipped int
	stats   frameStats
}

func newDriver(l *Loop, p *Pipeline, s *Surface, st *RenderState, cfg resolvedConfig, logger *log.Logger, debug bool) *Driver {
	d := &Driver{
		loop:     l,
		pipeline: p,
		surface:  s,
		state:    st,
		speed:    cfg.RotationSpeed,
		logger:   logger,
		debug:    debug,
	}
	d.setFade(cfg.FadeIn)
	return d
}

// setFade restarts the fade-in ramp. A zero duration means full intensity.
func (d *Driver) setFade(seconds float64) {
	if seconds > 0 {
		d.fade = gween.New(0, 1, float32(seconds), ease.OutCubic)
		d.state.Fade = 0
		return
	}
	d.fade = nil
	d.state.Fade = 1
}

// Start moves Idle to Running and schedules the first tick. It does nothing
// in any other state.
func (d *Driver) Start() {
	if d.status != DriverIdle {
		return
	}
	d.status = DriverRunning
	d.next = d.loop.Post(d.tick)
}

// Stop moves to Stopped and cancels the pending tick, so no tick runs after
// Stop returns. Idempotent.
func (d *Driver) Stop() {
	d.next.Cancel()
	d.next = Handle{}
	d.status = DriverStopped
}

// State returns the current lifecycle state.
func (d *Driver) State() DriverState { return d.status }

// Elapsed returns the effect time.
func (d *Driver) Elapsed() float64 { return d.state.Elapsed }

// Ticks returns how many ticks ran, and how many of those skipped drawing
// because the surface had no area.
func (d *Driver) Ticks() (ticks, skipped int) { return d.ticks, d.skipped }

func (d *Driver) tick() {
	if d.status != DriverRunning {
		return
	}
	d.ticks++
	d.state.Elapsed += TimeStep * d.speed
	if d.fade != nil {
		v, done := d.fade.Update(float32(TimeStep))
		d.state.Fade = float64(v)
		if done {
			d.fade = nil
			d.state.Fade = 1
		}
	}

	d.state.Width, d.state.Height = d.surface.Size()
	d.state.PixelRatio = d.surface.PixelRatio()

	var t0 time.Time
	if d.debug {
		t0 = time.Now()
	}
	err := d.pipeline.DrawFrame(*d.state)
	switch {
	case errors.Is(err, ErrZeroDimension):
		d.skipped++
	case err != nil:
		d.logger.Error("draw failed", "err", err)
	}
	if d.debug {
		d.stats.record(time.Since(t0), err == nil)
		d.stats.maybeLog(d.logger, d.state)
	}

	d.next = d.loop.Post(d.tick)
}
