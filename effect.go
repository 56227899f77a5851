package lightpillar

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Options supplies the collaborators of an Effect. Zero fields get defaults.
type Options struct {
	// Device renders frames. Defaults to NewEbitenDevice().
	Device Device
	// Loop schedules ticks and debounced resizes. Defaults to a Loop on a
	// SystemClock; the host must Pump it.
	Loop *Loop
	// Logger receives warnings and, with Debug, per-frame stats.
	Logger *log.Logger
	// Debug logs aggregated frame timings at debug level.
	Debug bool
}

// Effect is one light pillar bound to a container. It owns every resource
// it acquires and releases them in Destroy.
type Effect struct {
	container Container
	cfg       resolvedConfig
	device    Device
	loop      *Loop
	logger    *log.Logger
	debug     bool

	state    RenderState
	surface  *Surface
	pipeline *Pipeline
	pointer  *PointerController
	resize   *ResizeController
	driver   *Driver
	upload   *ebiten.Image // software frames staged for Present

	degraded  bool
	err       error
	destroyed bool
}

// New validates cfg and brings the effect up in c: probe the device, create
// the surface and pipeline, attach pointer (if interactive) and resize
// handling, then start the frame loop.
//
// Only configuration problems are returned as errors (*ConfigError). If the
// device is unsupported or allocation fails, the container background is
// made transparent, a warning is logged and a degraded Effect is returned.
func New(c Container, cfg Config, opts Options) (*Effect, error) {
	rc, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	e := &Effect{
		container: c,
		cfg:       rc,
		device:    opts.Device,
		loop:      opts.Loop,
		logger:    opts.Logger,
		debug:     opts.Debug,
	}
	if e.device == nil {
		e.device = NewEbitenDevice()
	}
	if e.loop == nil {
		e.loop = NewLoop(nil)
	}
	if e.logger == nil {
		e.logger = defaultLogger()
	}
	e.initialize()
	return e, nil
}

func (e *Effect) initialize() {
	if err := probeDevice(e.device); err != nil {
		e.degrade(err)
		return
	}

	box := e.container.ContentBox()
	if box.Empty() {
		e.logger.Warn("container has zero size at init; waiting for resize",
			"width", box.Width, "height", box.Height)
	}

	s, err := newSurface(e.device, e.container, e.cfg.BlendMode)
	if err != nil {
		e.degrade(err)
		return
	}
	e.surface = s
	e.state.Width, e.state.Height = s.Size()
	e.state.PixelRatio = s.PixelRatio()

	p, err := newPipeline(e.device, s, e.cfg)
	if err != nil {
		e.surface.Release()
		e.surface = nil
		e.degrade(err)
		return
	}
	e.pipeline = p

	if e.cfg.Interactive {
		e.pointer = newPointerController(e.container, e.loop.Clock(), &e.state)
		e.pointer.Attach()
	}
	e.resize = newResizeController(e.container, e.loop, s, p, e.logger)
	e.resize.Attach()

	e.driver = newDriver(e.loop, p, s, &e.state, e.cfg, e.logger, e.debug)
	e.driver.Start()

	e.logger.Debug("effect started", "device", e.device.Name(),
		"width", e.state.Width, "height", e.state.Height, "ratio", e.state.PixelRatio)
}

// degrade switches to the transparent fallback. Nothing else is built.
func (e *Effect) degrade(err error) {
	e.degraded = true
	e.err = err
	e.container.SetBackground(Transparent)
	if errors.Is(err, ErrCapabilityUnsupported) {
		e.logger.Warn("accelerated rendering unavailable; effect disabled", "device", e.device.Name(), "err", err)
		return
	}
	e.logger.Warn("could not create rendering surface; effect disabled", "device", e.device.Name(), "err", err)
}

// Destroy stops the frame loop, detaches listeners, and releases the
// pipeline and then the surface. Safe to call repeatedly and on degraded
// effects.
func (e *Effect) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if e.driver != nil {
		e.driver.Stop()
	}
	if e.pointer != nil {
		e.pointer.Detach()
	}
	if e.resize != nil {
		e.resize.Detach()
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if e.surface != nil {
		e.surface.Release()
	}
	e.releaseUpload()
}

// Reconfigure validates cfg and rebinds the uniform set, blend mode, speed
// and pointer handling. Size and device are unchanged. On a degraded or
// destroyed effect only validation happens.
func (e *Effect) Reconfigure(cfg Config) error {
	rc, err := cfg.resolve()
	if err != nil {
		return err
	}
	if e.degraded || e.destroyed {
		return nil
	}
	fadeChanged := rc.FadeIn != e.cfg.FadeIn
	e.cfg = rc
	e.pipeline.Configure(rc)
	e.surface.SetBlend(rc.BlendMode)
	e.driver.speed = rc.RotationSpeed
	if fadeChanged {
		e.driver.setFade(rc.FadeIn)
	}

	switch {
	case rc.Interactive && e.pointer == nil:
		e.pointer = newPointerController(e.container, e.loop.Clock(), &e.state)
		e.pointer.Attach()
	case rc.Interactive:
		e.pointer.Attach()
	case e.pointer != nil:
		e.pointer.Detach()
		e.state.Pointer = Vec2{}
	}
	return nil
}

// Degraded reports whether the effect fell back to a transparent
// background. Err returns the cause.
func (e *Effect) Degraded() bool { return e.degraded }

// Err returns the capability or surface error that caused degradation.
func (e *Effect) Err() error { return e.err }

// Destroyed reports whether Destroy has been called.
func (e *Effect) Destroyed() bool { return e.destroyed }

// Config returns the effective configuration, defaults applied.
func (e *Effect) Config() Config { return e.cfg.Config }

// Loop returns the scheduler the host must pump.
func (e *Effect) Loop() *Loop { return e.loop }

// Surface returns the surface, or nil when degraded.
func (e *Effect) Surface() *Surface { return e.surface }

// Pipeline returns the pipeline, or nil when degraded.
func (e *Effect) Pipeline() *Pipeline { return e.pipeline }

// Driver returns the frame loop, or nil when degraded.
func (e *Effect) Driver() *Driver { return e.driver }

// Pointer returns the pointer controller, or nil when not interactive.
func (e *Effect) Pointer() *PointerController { return e.pointer }

// Resizer returns the resize controller, or nil when degraded.
func (e *Effect) Resizer() *ResizeController { return e.resize }

// State returns a copy of the current render state.
func (e *Effect) State() RenderState { return e.state }
