package lightpillar

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig controls the window created by Run.
type RunConfig struct {
	Title         string
	Width, Height int  // logical window size; zero defaults to 640x480
	ShowFPS       bool // draw the FPS/TPS overlay
	Debug         bool // log frame stats at debug level
	Logger        *log.Logger
	// Device overrides the default EbitenDevice, e.g. with a SoftwareDevice.
	Device Device
	// Background is drawn behind the effect. Zero is opaque black.
	Background Color
}

// Run opens a resizable window and renders the effect until it is closed.
// Configuration errors are returned before the window opens.
func Run(cfg Config, rc RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if rc.Width <= 0 || rc.Height <= 0 {
		rc.Width, rc.Height = 640, 480
	}
	if rc.Title == "" {
		rc.Title = "Light Pillar"
	}
	if rc.Background == (Color{}) {
		rc.Background = Color{A: 1}
	}

	host := NewWindowHost(float64(rc.Width), float64(rc.Height))
	host.SetBackground(rc.Background)
	if rc.ShowFPS {
		host.fps = newFPSOverlay()
	}

	fx, err := New(host, cfg, Options{
		Device: rc.Device,
		Loop:   host.Loop(),
		Logger: rc.Logger,
		Debug:  rc.Debug,
	})
	if err != nil {
		return err
	}
	host.Attach(fx)
	defer fx.Destroy()

	ebiten.SetWindowTitle(rc.Title)
	ebiten.SetWindowSize(rc.Width, rc.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(host)
}

// WindowHost is a Container backed by the Ebitengine window. It implements
// ebiten.Game: Update delivers cursor motion and size changes and pumps the
// loop; Draw presents the effect.
type WindowHost struct {
	loop       *Loop
	effect     *Effect
	box        Rect
	scale      float64 // monitor device scale factor
	background Color
	fps        *fpsOverlay

	lastCursorX, lastCursorY int
	cursorKnown              bool

	outsideW, outsideH float64 // last Layout size, applied in Update
	outsideScale       float64

	pointer  listeners[func(x, y float64)]
	viewport listeners[func()]
}

// NewWindowHost creates a host for a window of the given logical size. Its
// loop runs on a SystemClock.
func NewWindowHost(w, h float64) *WindowHost {
	return &WindowHost{
		loop:  NewLoop(NewSystemClock()),
		box:   Rect{Width: w, Height: h},
		scale: 1,
	}
}

// Loop returns the loop pumped from Update.
func (wh *WindowHost) Loop() *Loop { return wh.loop }

// Attach sets the effect presented by Draw.
func (wh *WindowHost) Attach(fx *Effect) { wh.effect = fx }

// ContentBox implements Container. The window content starts at the origin.
func (wh *WindowHost) ContentBox() Rect { return wh.box }

// DevicePixelRatio implements Container.
func (wh *WindowHost) DevicePixelRatio() float64 { return wh.scale }

// SetBackground implements Container.
func (wh *WindowHost) SetBackground(c Color) { wh.background = c }

// OnPointerMove implements Container.
func (wh *WindowHost) OnPointerMove(fn func(x, y float64)) func() {
	return wh.pointer.add(fn)
}

// OnViewportChange implements Container.
func (wh *WindowHost) OnViewportChange(fn func()) func() {
	return wh.viewport.add(fn)
}

// Update implements ebiten.Game.
func (wh *WindowHost) Update() error {
	wh.syncLayout()
	wh.trackCursor(ebiten.CursorPosition())
	wh.loop.Pump()
	if wh.fps != nil {
		tps := ebiten.TPS()
		if tps <= 0 {
			tps = ebiten.DefaultTPS
		}
		wh.fps.update(1.0 / float64(tps))
	}
	return nil
}

// trackCursor dispatches a pointer move when the cursor position differs
// from the last one seen. The first position is only recorded: a cursor
// that has not moved is not pointer motion.
func (wh *WindowHost) trackCursor(cx, cy int) {
	if !wh.cursorKnown {
		wh.cursorKnown = true
		wh.lastCursorX, wh.lastCursorY = cx, cy
		return
	}
	if cx == wh.lastCursorX && cy == wh.lastCursorY {
		return
	}
	wh.lastCursorX, wh.lastCursorY = cx, cy
	// Cursor positions are in screen pixels; the content box is logical.
	x, y := float64(cx)/wh.scale, float64(cy)/wh.scale
	for _, fn := range wh.pointer.snapshot() {
		fn(x, y)
	}
}

// Draw implements ebiten.Game.
func (wh *WindowHost) Draw(screen *ebiten.Image) {
	screen.Fill(wh.background.toRGBA())
	if wh.effect != nil {
		wh.effect.Present(screen)
	}
	if wh.fps != nil {
		wh.fps.draw(screen)
	}
}

// Layout implements ebiten.Game. The screen is sized in device pixels so
// the surface can be presented without resampling. Size changes are only
// recorded here and dispatched from Update.
func (wh *WindowHost) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if m := ebiten.Monitor(); m != nil {
		scale = m.DeviceScaleFactor()
	}
	wh.outsideW, wh.outsideH = float64(outsideWidth), float64(outsideHeight)
	wh.outsideScale = scale
	return int(math.Ceil(wh.outsideW * scale)), int(math.Ceil(wh.outsideH * scale))
}

// syncLayout applies the last size seen by Layout and notifies viewport
// listeners when it changed.
func (wh *WindowHost) syncLayout() {
	if wh.outsideW == 0 && wh.outsideH == 0 {
		return
	}
	if wh.outsideW == wh.box.Width && wh.outsideH == wh.box.Height && wh.outsideScale == wh.scale {
		return
	}
	wh.box.Width, wh.box.Height = wh.outsideW, wh.outsideH
	wh.scale = wh.outsideScale
	for _, fn := range wh.viewport.snapshot() {
		fn()
	}
}

// Present composites the latest frame onto dst with the configured blend
// mode, stretched to fill dst. Software frames are uploaded first.
// Degraded, destroyed and zero-size effects draw nothing.
func (e *Effect) Present(dst *ebiten.Image) {
	if e.degraded || e.destroyed || e.surface == nil || !e.surface.Drawable() {
		return
	}
	var src *ebiten.Image
	switch t := e.surface.Target().(type) {
	case *ebitenTarget:
		src = t.image
	case *softwareTarget:
		src = e.uploadSoftware(t)
	}
	if src == nil {
		return
	}
	sb := src.Bounds()
	db := dst.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.GeoM.Translate(float64(db.Min.X), float64(db.Min.Y))
	op.Filter = ebiten.FilterLinear
	op.Blend = e.surface.Blend().EbitenBlend()
	dst.DrawImage(src, &op)
}

// uploadSoftware copies a CPU frame into a cached GPU image.
func (e *Effect) uploadSoftware(t *softwareTarget) *ebiten.Image {
	if t.img == nil {
		return nil
	}
	w, h := t.Size()
	if e.upload == nil || e.upload.Bounds().Dx() != w || e.upload.Bounds().Dy() != h {
		if e.upload != nil {
			e.upload.Deallocate()
		}
		e.upload = ebiten.NewImage(w, h)
	}
	e.upload.WritePixels(t.img.Pix)
	return e.upload
}

// releaseUpload frees the cached upload image.
func (e *Effect) releaseUpload() {
	if e.upload != nil {
		e.upload.Deallocate()
		e.upload = nil
	}
}
