package lightpillar

import (
	"testing"
	"time"
)

type resizeFixture struct {
	clock *ManualClock
	loop  *Loop
	host  *HeadlessHost
	dev   *fakeDevice
	surf  *Surface
	pipe  *Pipeline
	rc    *ResizeController
}

func newResizeFixture(t *testing.T, w, h float64) *resizeFixture {
	t.Helper()
	f := &resizeFixture{clock: &ManualClock{}, host: NewHeadlessHost(w, h), dev: &fakeDevice{}}
	f.loop = NewLoop(f.clock)
	rcfg, _ := DefaultConfig().resolve()
	var err error
	if f.surf, err = newSurface(f.dev, f.host, BlendNormal); err != nil {
		t.Fatal(err)
	}
	if f.pipe, err = newPipeline(f.dev, f.surf, rcfg); err != nil {
		t.Fatal(err)
	}
	f.rc = newResizeController(f.host, f.loop, f.surf, f.pipe, discardLogger())
	f.rc.Attach()
	return f
}

func (f *resizeFixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.loop.Pump()
}

func TestResizeDebounceKeepsLast(t *testing.T) {
	f := newResizeFixture(t, 100, 100)

	f.host.Resize(200, 100)
	f.advance(100 * time.Millisecond)
	f.host.Resize(300, 150)
	f.advance(100 * time.Millisecond)
	if f.rc.Fired() != 0 {
		t.Fatalf("resize applied before the quiet period ended")
	}
	f.host.Resize(320, 240)
	f.advance(ResizeDebounce)

	if f.rc.Fired() != 1 {
		t.Fatalf("Fired() = %d, want 1", f.rc.Fired())
	}
	if w, h := f.surf.Size(); w != 320 || h != 240 {
		t.Errorf("surface = %dx%d, want 320x240", w, h)
	}
	if got := f.pipe.Uniforms().Resolution; got != (Vec2{320, 240}) {
		t.Errorf("resolution uniform = %v, want {320 240}", got)
	}
}

func TestResizePixelRatioChange(t *testing.T) {
	f := newResizeFixture(t, 100, 50)
	f.host.SetDevicePixelRatio(2)
	f.advance(ResizeDebounce)
	if w, h := f.surf.Size(); w != 200 || h != 100 {
		t.Errorf("surface = %dx%d, want 200x100", w, h)
	}
	if f.surf.PixelRatio() != 2 {
		t.Errorf("PixelRatio() = %v, want 2", f.surf.PixelRatio())
	}
}

func TestResizeToZeroStopsDrawing(t *testing.T) {
	f := newResizeFixture(t, 100, 100)
	f.host.Resize(0, 100)
	f.advance(ResizeDebounce)

	w, h := f.surf.Size()
	st := RenderState{Width: w, Height: h, Fade: 1}
	if err := f.pipe.DrawFrame(st); err == nil {
		t.Error("DrawFrame at zero width succeeded")
	}
	if f.dev.program.draws != 0 {
		t.Errorf("draws = %d at zero size, want 0", f.dev.program.draws)
	}
	if got := f.pipe.Uniforms().Resolution; got != (Vec2{0, 100}) {
		t.Errorf("resolution uniform = %v, want {0 100}", got)
	}
}

func TestResizeAfterDetachIsNoop(t *testing.T) {
	f := newResizeFixture(t, 100, 100)
	f.host.Resize(200, 200)
	f.rc.Detach()
	f.advance(time.Second)
	if f.rc.Fired() != 0 {
		t.Error("pending resize ran after Detach")
	}
	if _, v := f.host.Listeners(); v != 0 {
		t.Errorf("viewport listeners = %d after Detach, want 0", v)
	}
	f.rc.OnViewportChange()
	f.rc.Attach()
	f.advance(time.Second)
	if f.rc.Fired() != 0 {
		t.Error("closed controller scheduled a resize")
	}
	if f.loop.Len() != 0 {
		t.Errorf("loop has %d tasks, want 0", f.loop.Len())
	}
}
