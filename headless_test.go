package lightpillar

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newTestHeadless(t *testing.T, cfg Config, w, h float64) *Headless {
	t.Helper()
	hl, err := NewHeadless(cfg, w, h, Options{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}
	t.Cleanup(hl.Close)
	return hl
}

func TestHeadlessFramesAdvanceTime(t *testing.T) {
	hl := newTestHeadless(t, DefaultConfig(), 8, 6)
	hl.Frames(25)
	if hl.FrameCount() != 25 {
		t.Errorf("FrameCount() = %d, want 25", hl.FrameCount())
	}
	want := 25 * TimeStep * DefaultRotationSpeed
	if got := hl.Effect.Driver().Elapsed(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Elapsed() = %v, want %v", got, want)
	}
	if hl.Effect.Pipeline().Frames() != 25 {
		t.Errorf("pipeline frames = %d, want 25", hl.Effect.Pipeline().Frames())
	}
}

func TestHeadlessSnapshot(t *testing.T) {
	hl := newTestHeadless(t, DefaultConfig(), 8, 6)
	if _, err := hl.Effect.Snapshot(); err != nil {
		// The target exists before the first frame; it is just black.
		t.Fatalf("Snapshot() before first frame error = %v", err)
	}
	hl.Frame()
	img, err := hl.Effect.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("snapshot bounds = %v, want 8x6", b)
	}
	if img.NRGBAAt(3, 3).A != 0xff {
		t.Error("snapshot pixel not opaque")
	}

	dir := t.TempDir()
	path, err := hl.Effect.SaveSnapshot(dir, "first frame")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "first_frame.png" {
		t.Errorf("path = %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved file is not a PNG: %v", err)
	}
}

func TestHeadlessSnapshotZeroSize(t *testing.T) {
	hl := newTestHeadless(t, DefaultConfig(), 0, 0)
	hl.Frames(3)
	if _, err := hl.Effect.Snapshot(); err != ErrNoFrame {
		t.Errorf("Snapshot() = %v, want ErrNoFrame", err)
	}
}

func TestHeadlessQueueSweep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interactive = true
	hl := newTestHeadless(t, cfg, 100, 100)

	hl.QueueSweep(0, 50, 100, 50, 5)
	if hl.Pending() != 5 {
		t.Fatalf("Pending() = %d, want 5", hl.Pending())
	}
	hl.Frames(5)
	if hl.Pending() != 0 {
		t.Errorf("Pending() = %d after 5 frames", hl.Pending())
	}
	// Frames are 16.6ms apart, beyond the throttle, so every move lands.
	accepted, dropped := hl.Effect.Pointer().Stats()
	if accepted != 5 || dropped != 0 {
		t.Errorf("Stats() = %d, %d, want 5, 0", accepted, dropped)
	}
	if got := hl.Effect.State().Pointer; got != (Vec2{1, 0}) {
		t.Errorf("Pointer = %v, want {1 0}", got)
	}
}

func TestHeadlessQueueResize(t *testing.T) {
	hl := newTestHeadless(t, DefaultConfig(), 10, 10)
	hl.QueueResize(20, 12)
	hl.Frames(int(ResizeDebounce/FrameInterval) + 2)
	if w, h := hl.Effect.Surface().Size(); w != 20 || h != 12 {
		t.Errorf("surface = %dx%d, want 20x12", w, h)
	}
	img, err := hl.Effect.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 12 {
		t.Errorf("snapshot bounds = %v, want 20x12", b)
	}
}

func TestHeadlessConfigError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PillarHeight = -1
	if _, err := NewHeadless(cfg, 10, 10, Options{}); err == nil {
		t.Error("NewHeadless accepted an invalid config")
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"idle", "idle"},
		{"frame-0001", "frame-0001"},
		{"a b/c", "a_b_c"},
		{"v1.2", "v1.2"},
		{"../escape", ".._escape"},
		{"héllo", "h_llo"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
