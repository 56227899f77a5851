package lightpillar

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

// --- fakes shared by lifecycle tests ---

// fakeDevice records every resource call in a shared event log.
type fakeDevice struct {
	probeErr   error
	probePanic bool
	targetErr  error
	resizeErr  error
	programErr error

	events  []string
	targets []*fakeTarget
	program *fakeProgram
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Probe() error {
	d.events = append(d.events, "probe")
	if d.probePanic {
		panic("no context")
	}
	return d.probeErr
}

func (d *fakeDevice) NewTarget(w, h int) (Target, error) {
	d.events = append(d.events, fmt.Sprintf("target %dx%d", w, h))
	if d.targetErr != nil {
		return nil, d.targetErr
	}
	t := &fakeTarget{dev: d, w: w, h: h}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *fakeDevice) NewProgram() (Program, error) {
	d.events = append(d.events, "program")
	if d.programErr != nil {
		return nil, d.programErr
	}
	d.program = &fakeProgram{dev: d}
	return d.program, nil
}

type fakeTarget struct {
	dev      *fakeDevice
	w, h     int
	released bool
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }

func (t *fakeTarget) Resize(w, h int) error {
	t.dev.events = append(t.dev.events, fmt.Sprintf("resize %dx%d", w, h))
	if t.dev.resizeErr != nil {
		return t.dev.resizeErr
	}
	t.w, t.h = w, h
	return nil
}

func (t *fakeTarget) Release() {
	if !t.released {
		t.dev.events = append(t.dev.events, "release target")
	}
	t.released = true
}

type fakeProgram struct {
	dev      *fakeDevice
	draws    int
	last     Uniforms
	released bool
}

func (p *fakeProgram) Draw(dst Target, u *Uniforms) error {
	p.draws++
	p.last = *u
	return nil
}

func (p *fakeProgram) Release() {
	if !p.released {
		p.dev.events = append(p.dev.events, "release program")
	}
	p.released = true
}

func (d *fakeDevice) count(event string) int {
	n := 0
	for _, e := range d.events {
		if e == event {
			n++
		}
	}
	return n
}

func discardLogger() *log.Logger {
	return NewLogger(io.Discard, log.DebugLevel)
}

// --- probeDevice ---

func TestProbeDevice(t *testing.T) {
	tests := []struct {
		name    string
		dev     Device
		wantErr bool
	}{
		{"ok", &fakeDevice{}, false},
		{"error", &fakeDevice{probeErr: errors.New("no gl")}, true},
		{"panic", &fakeDevice{probePanic: true}, true},
		{"nil device", nil, true},
		{"software", NewSoftwareDevice(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := probeDevice(tt.dev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("probeDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrCapabilityUnsupported) {
				t.Errorf("error %v does not wrap ErrCapabilityUnsupported", err)
			}
		})
	}
}

var errTest = errors.New("test error")
