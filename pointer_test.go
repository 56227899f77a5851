package lightpillar

import (
	"math"
	"testing"
)

func TestNormalizePointer(t *testing.T) {
	box := Rect{X: 100, Y: 50, Width: 200, Height: 100}
	tests := []struct {
		name string
		x, y float64
		want Vec2
	}{
		{"center", 200, 100, Vec2{0, 0}},
		{"top-left", 100, 50, Vec2{-1, 1}},
		{"bottom-right", 300, 150, Vec2{1, -1}},
		{"quarter", 150, 125, Vec2{-0.5, -0.5}},
		{"outside", 400, 50, Vec2{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePointer(box, tt.x, tt.y)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("normalizePointer(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPointerThrottle(t *testing.T) {
	clock := &ManualClock{}
	host := NewHeadlessHost(100, 100)
	var st RenderState
	pc := newPointerController(host, clock, &st)
	pc.Attach()

	// 100 events spread over less than one throttle window.
	for i := 0; i < 100; i++ {
		host.MovePointer(float64(i), 50)
		clock.Advance(PointerThrottle / 101)
	}
	accepted, dropped := pc.Stats()
	if accepted > 1 {
		t.Errorf("accepted = %d within one throttle window, want <= 1", accepted)
	}
	if accepted+dropped != 100 {
		t.Errorf("accepted+dropped = %d, want 100", accepted+dropped)
	}
	if st.Pointer != (Vec2{-1, 0}) {
		t.Errorf("Pointer = %v, want first event {-1 0}", st.Pointer)
	}

	clock.Advance(PointerThrottle)
	host.MovePointer(100, 0)
	if accepted, _ := pc.Stats(); accepted != 2 {
		t.Errorf("accepted = %d after window, want 2", accepted)
	}
	if st.Pointer != (Vec2{1, 1}) {
		t.Errorf("Pointer = %v, want {1 1}", st.Pointer)
	}
}

func TestPointerEmptyBoxDropped(t *testing.T) {
	host := NewHeadlessHost(0, 0)
	var st RenderState
	pc := newPointerController(host, &ManualClock{}, &st)
	pc.Attach()
	host.MovePointer(10, 10)
	if accepted, dropped := pc.Stats(); accepted != 0 || dropped != 1 {
		t.Errorf("Stats() = %d, %d, want 0, 1", accepted, dropped)
	}
	if st.Pointer != (Vec2{}) {
		t.Errorf("Pointer = %v, want zero", st.Pointer)
	}
}

func TestPointerAttachDetach(t *testing.T) {
	host := NewHeadlessHost(100, 100)
	var st RenderState
	pc := newPointerController(host, &ManualClock{}, &st)
	pc.Attach()
	pc.Attach()
	if p, _ := host.Listeners(); p != 1 {
		t.Fatalf("pointer listeners = %d, want 1", p)
	}
	pc.Detach()
	pc.Detach()
	if p, _ := host.Listeners(); p != 0 {
		t.Errorf("pointer listeners = %d after Detach, want 0", p)
	}
	host.MovePointer(10, 10)
	if accepted, _ := pc.Stats(); accepted != 0 {
		t.Error("detached controller received an event")
	}
}
