package lightpillar

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type effectFixture struct {
	clock *ManualClock
	loop  *Loop
	host  *HeadlessHost
	dev   *fakeDevice
	logs  *bytes.Buffer
}

func newEffectFixture(w, h float64) *effectFixture {
	f := &effectFixture{
		clock: &ManualClock{},
		host:  NewHeadlessHost(w, h),
		dev:   &fakeDevice{},
		logs:  &bytes.Buffer{},
	}
	f.loop = NewLoop(f.clock)
	return f
}

func (f *effectFixture) newEffect(t *testing.T, cfg Config) *Effect {
	t.Helper()
	fx, err := New(f.host, cfg, Options{
		Device: f.dev,
		Loop:   f.loop,
		Logger: NewLogger(f.logs, log.DebugLevel),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return fx
}

func (f *effectFixture) frames(n int) {
	for i := 0; i < n; i++ {
		f.clock.Advance(FrameInterval)
		f.loop.Pump()
	}
}

func TestNewStartsEffect(t *testing.T) {
	f := newEffectFixture(64, 32)
	fx := f.newEffect(t, DefaultConfig())
	defer fx.Destroy()

	if fx.Degraded() {
		t.Fatalf("Degraded() = true, err %v", fx.Err())
	}
	if fx.Driver().State() != DriverRunning {
		t.Errorf("driver state = %v, want running", fx.Driver().State())
	}
	if fx.Pointer() != nil {
		t.Error("pointer controller created for non-interactive effect")
	}
	if _, set := f.host.Background(); set {
		t.Error("background changed on a healthy effect")
	}
	want := []string{"probe", "target 64x32", "program"}
	if !reflect.DeepEqual(f.dev.events, want) {
		t.Errorf("events = %v, want %v", f.dev.events, want)
	}

	f.frames(10)
	if f.dev.program.draws != 10 {
		t.Errorf("draws = %d, want 10", f.dev.program.draws)
	}
	if got := fx.State().Elapsed; got < 10*TimeStep*DefaultRotationSpeed-1e-9 || got > 10*TimeStep*DefaultRotationSpeed+1e-9 {
		t.Errorf("Elapsed = %v", got)
	}
}

func TestNewConfigErrorSurfaced(t *testing.T) {
	f := newEffectFixture(64, 32)
	cfg := DefaultConfig()
	cfg.TopColor = "not-a-color"
	fx, err := New(f.host, cfg, Options{Device: f.dev, Loop: f.loop})
	if fx != nil {
		t.Error("New returned an effect with a config error")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "top_color" {
		t.Errorf("New() error = %v, want *ConfigError for top_color", err)
	}
	if len(f.dev.events) != 0 {
		t.Errorf("device touched before validation: %v", f.dev.events)
	}
}

func TestNewDegradesWhenUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		dev     *fakeDevice
		wantErr error
	}{
		{"probe error", &fakeDevice{probeErr: errors.New("no webgl")}, ErrCapabilityUnsupported},
		{"probe panic", &fakeDevice{probePanic: true}, ErrCapabilityUnsupported},
		{"target error", &fakeDevice{targetErr: errors.New("oom")}, ErrSurfaceCreation},
		{"program error", &fakeDevice{programErr: errors.New("compile")}, ErrSurfaceCreation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEffectFixture(64, 32)
			f.dev = tt.dev
			cfg := DefaultConfig()
			cfg.Interactive = true
			fx := f.newEffect(t, cfg)

			if !fx.Degraded() {
				t.Fatal("Degraded() = false")
			}
			if !errors.Is(fx.Err(), tt.wantErr) {
				t.Errorf("Err() = %v, want %v", fx.Err(), tt.wantErr)
			}
			bg, set := f.host.Background()
			if !set || bg != Transparent {
				t.Errorf("background = %+v (set %v), want transparent", bg, set)
			}
			if fx.Surface() != nil || fx.Pipeline() != nil || fx.Driver() != nil || fx.Pointer() != nil || fx.Resizer() != nil {
				t.Error("degraded effect built components")
			}
			if p, v := f.host.Listeners(); p != 0 || v != 0 {
				t.Errorf("listeners = %d, %d, want none", p, v)
			}
			if f.loop.Len() != 0 {
				t.Errorf("loop has %d tasks, want 0", f.loop.Len())
			}
			if tt.name == "program error" && f.dev.count("release target") != 1 {
				t.Error("surface not released after program failure")
			}
			if !strings.Contains(f.logs.String(), "WARN") {
				t.Errorf("no warning logged:\n%s", f.logs.String())
			}

			fx.Destroy()
			fx.Destroy()
			if err := fx.Reconfigure(DefaultConfig()); err != nil {
				t.Errorf("Reconfigure on degraded effect = %v", err)
			}
		})
	}
}

func TestNewZeroSizeWarnsAndWaits(t *testing.T) {
	f := newEffectFixture(0, 0)
	fx := f.newEffect(t, DefaultConfig())
	defer fx.Destroy()

	if fx.Degraded() {
		t.Fatalf("zero size degraded the effect: %v", fx.Err())
	}
	if !strings.Contains(f.logs.String(), "zero size") {
		t.Errorf("no zero-size warning:\n%s", f.logs.String())
	}
	f.frames(5)
	if f.dev.program.draws != 0 {
		t.Errorf("draws = %d at zero size, want 0", f.dev.program.draws)
	}

	f.host.Resize(40, 30)
	f.frames(int(ResizeDebounce/FrameInterval) + 2)
	if f.dev.program.draws == 0 {
		t.Error("no frames drawn after resize to a usable size")
	}
	if w, h := fx.Surface().Size(); w != 40 || h != 30 {
		t.Errorf("surface = %dx%d, want 40x30", w, h)
	}
}

func TestDestroyReleasesInOrder(t *testing.T) {
	f := newEffectFixture(32, 32)
	cfg := DefaultConfig()
	cfg.Interactive = true
	fx := f.newEffect(t, cfg)
	f.frames(2)

	f.host.Resize(64, 64) // leave a debounced resize pending
	fx.Destroy()
	fx.Destroy()

	if !fx.Destroyed() {
		t.Error("Destroyed() = false")
	}
	tail := f.dev.events[len(f.dev.events)-2:]
	if !reflect.DeepEqual(tail, []string{"release program", "release target"}) {
		t.Errorf("release order = %v, want program then target", tail)
	}
	if f.dev.count("release program") != 1 || f.dev.count("release target") != 1 {
		t.Errorf("resources released more than once: %v", f.dev.events)
	}
	if p, v := f.host.Listeners(); p != 0 || v != 0 {
		t.Errorf("listeners = %d, %d after Destroy, want none", p, v)
	}

	draws := f.dev.program.draws
	f.frames(20)
	if f.dev.program.draws != draws {
		t.Error("frame drawn after Destroy")
	}
	if fx.Resizer().Fired() != 0 {
		t.Error("pending resize ran after Destroy")
	}
	if f.loop.Len() != 0 {
		t.Errorf("loop has %d tasks after Destroy, want 0", f.loop.Len())
	}
}

func TestInteractivePointerReachesUniforms(t *testing.T) {
	f := newEffectFixture(100, 100)
	cfg := DefaultConfig()
	cfg.Interactive = true
	fx := f.newEffect(t, cfg)
	defer fx.Destroy()

	f.host.MovePointer(75, 25)
	f.frames(1)
	if got := f.dev.program.last.Pointer; got != (Vec2{0.5, 0.5}) {
		t.Errorf("pointer uniform = %v, want {0.5 0.5}", got)
	}
}

func TestNonInteractiveIgnoresPointer(t *testing.T) {
	f := newEffectFixture(100, 100)
	fx := f.newEffect(t, DefaultConfig())
	defer fx.Destroy()

	f.host.MovePointer(75, 25)
	f.frames(1)
	if got := f.dev.program.last.Pointer; got != (Vec2{}) {
		t.Errorf("pointer uniform = %v, want zero", got)
	}
	if p, _ := f.host.Listeners(); p != 0 {
		t.Errorf("pointer listeners = %d, want 0", p)
	}
}

func TestReconfigure(t *testing.T) {
	f := newEffectFixture(50, 50)
	fx := f.newEffect(t, DefaultConfig())
	defer fx.Destroy()

	cfg := DefaultConfig()
	cfg.TopColor = "#00ff00"
	cfg.BlendMode = BlendAdd
	cfg.RotationSpeed = 0
	cfg.Interactive = true
	if err := fx.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure() = %v", err)
	}
	before := fx.State().Elapsed
	f.frames(3)
	if fx.State().Elapsed != before {
		t.Error("speed 0 after Reconfigure still advances time")
	}
	if got := f.dev.program.last.TopColor; got.G != 1 || got.R != 0 {
		t.Errorf("top color = %+v, want green", got)
	}
	if fx.Surface().Blend() != BlendAdd {
		t.Errorf("blend = %v, want add", fx.Surface().Blend())
	}
	if fx.Pointer() == nil || !fx.Pointer().Attached() {
		t.Fatal("pointer not attached after enabling interaction")
	}

	cfg.Interactive = false
	if err := fx.Reconfigure(cfg); err != nil {
		t.Fatal(err)
	}
	if fx.Pointer().Attached() {
		t.Error("pointer still attached after disabling interaction")
	}

	bad := cfg
	bad.PillarWidth = -1
	if err := fx.Reconfigure(bad); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Reconfigure(bad) = %v, want config error", err)
	}
	if fx.Config().PillarWidth != DefaultPillarWidth {
		t.Error("rejected config was applied")
	}
}

func TestNewDefaults(t *testing.T) {
	f := newEffectFixture(8, 8)
	fx, err := New(f.host, DefaultConfig(), Options{Device: NewSoftwareDevice()})
	if err != nil {
		t.Fatal(err)
	}
	defer fx.Destroy()
	if fx.Loop() == nil {
		t.Fatal("no default loop")
	}
	if _, ok := fx.Loop().Clock().(*SystemClock); !ok {
		t.Errorf("default clock = %T, want *SystemClock", fx.Loop().Clock())
	}
}
