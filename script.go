package lightpillar

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a scenario script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptDoc is the top-level JSON structure for a script.
type scriptDoc struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"pointer":  true,
	"sweep":    true,
	"resize":   true,
	"wait":     true,
	"snapshot": true,
}

// Script sequences synthetic pointer and resize events and snapshots across
// headless frames.
//
//	{"steps": [
//	  {"action": "wait", "frames": 30},
//	  {"action": "snapshot", "label": "idle"},
//	  {"action": "sweep", "fromX": 0, "fromY": 200, "toX": 640, "toY": 200, "frames": 20},
//	  {"action": "resize", "width": 320, "height": 240},
//	  {"action": "wait", "frames": 15},
//	  {"action": "snapshot", "label": "small"}
//	]}
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	// Snapshots lists the files written so far.
	Snapshots []string
}

// LoadScript parses a JSON script.
func LoadScript(jsonData []byte) (*Script, error) {
	var doc scriptDoc
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range doc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: doc.Steps}, nil
}

// Done reports whether every step has been executed.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame, before the frame is pumped.
func (s *Script) step(hl *Headless, dir string) error {
	if s.done {
		return nil
	}
	// Wait for queued events to drain before advancing.
	if hl.Pending() > 0 {
		return nil
	}
	if s.waitCount > 0 {
		s.waitCount--
		return nil
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return nil
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "pointer":
		hl.QueuePointer(st.X, st.Y)
	case "sweep":
		hl.QueueSweep(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "resize":
		hl.QueueResize(st.Width, st.Height)
		// Let the debounce window elapse so the next step sees the new size.
		s.waitCount = int(ResizeDebounce/FrameInterval) + 1
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "snapshot":
		path, err := hl.Effect.SaveSnapshot(dir, st.Label)
		if err != nil {
			return fmt.Errorf("step %d snapshot %q: %w", s.cursor-1, st.Label, err)
		}
		s.Snapshots = append(s.Snapshots, path)
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && hl.Pending() == 0 {
		s.done = true
	}
	return nil
}

// RunScript drives hl until the script finishes or maxFrames frames have
// run, writing snapshots into dir.
func (hl *Headless) RunScript(s *Script, dir string, maxFrames int) error {
	for i := 0; i < maxFrames; i++ {
		if err := s.step(hl, dir); err != nil {
			return err
		}
		if s.Done() {
			return nil
		}
		hl.Frame()
	}
	return fmt.Errorf("script did not finish within %d frames (%s)", maxFrames, time.Duration(maxFrames)*FrameInterval)
}
