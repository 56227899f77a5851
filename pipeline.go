package lightpillar

import (
	"fmt"
)

// UniformName names one parameter of the field program.
type UniformName string

const (
	UniformTime           UniformName = "time"
	UniformResolution     UniformName = "resolution"
	UniformPointer        UniformName = "pointer"
	UniformTopColor       UniformName = "topColor"
	UniformBottomColor    UniformName = "bottomColor"
	UniformIntensity      UniformName = "intensity"
	UniformInteractive    UniformName = "interactive"
	UniformGlowAmount     UniformName = "glowAmount"
	UniformPillarWidth    UniformName = "pillarWidth"
	UniformPillarHeight   UniformName = "pillarHeight"
	UniformNoiseIntensity UniformName = "noiseIntensity"
	UniformPillarRotation UniformName = "pillarRotationDegrees"
)

// RenderState is the per-frame input to Pipeline.DrawFrame.
type RenderState struct {
	Elapsed       float64 // effect time; only Driver advances it
	Pointer       Vec2    // [-1,1]², +Y up
	Width, Height int     // device pixels
	PixelRatio    float64
	Fade          float64 // intensity multiplier in [0, 1]
}

// Pipeline owns the compiled program and the uniform set, and draws one
// full-surface pass per DrawFrame.
type Pipeline struct {
	program  Program
	surface  *Surface
	uniforms Uniforms
	base     float64 // configured intensity before fade
	frames   int
	released bool
}

// newPipeline compiles the program for d and binds it to s.
func newPipeline(d Device, s *Surface, cfg resolvedConfig) (*Pipeline, error) {
	prog, err := d.NewProgram()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
	}
	p := &Pipeline{program: prog, surface: s}
	p.Configure(cfg)
	w, h := s.Size()
	p.uniforms.Resolution = Vec2{X: float64(w), Y: float64(h)}
	return p, nil
}

// Configure loads the static uniforms from a validated config.
func (p *Pipeline) Configure(cfg resolvedConfig) {
	u := &p.uniforms
	u.TopColor = cfg.top
	u.BottomColor = cfg.bottom
	u.Intensity = cfg.Intensity
	u.Interactive = cfg.Interactive
	u.GlowAmount = cfg.GlowAmount
	u.PillarWidth = cfg.PillarWidth
	u.PillarHeight = cfg.PillarHeight
	u.NoiseIntensity = cfg.NoiseIntensity
	u.PillarRotation = cfg.PillarRotation
	if !cfg.Interactive {
		u.Pointer = Vec2{}
	}
	p.base = cfg.Intensity
}

// SetUniform sets one uniform. Names must be UniformName constants and
// values must match the uniform's type (float64, Vec2, Color or bool);
// anything else is a programming error and panics.
func (p *Pipeline) SetUniform(name UniformName, value any) {
	u := &p.uniforms
	switch name {
	case UniformTime:
		u.Time = mustFloat(name, value)
	case UniformResolution:
		u.Resolution = mustVec2(name, value)
	case UniformPointer:
		u.Pointer = mustVec2(name, value)
	case UniformTopColor:
		u.TopColor = mustColor(name, value)
	case UniformBottomColor:
		u.BottomColor = mustColor(name, value)
	case UniformIntensity:
		u.Intensity = mustFloat(name, value)
		p.base = u.Intensity
	case UniformInteractive:
		b, ok := value.(bool)
		if !ok {
			panic(fmt.Sprintf("lightpillar: uniform %q wants bool, got %T", name, value))
		}
		u.Interactive = b
	case UniformGlowAmount:
		u.GlowAmount = mustFloat(name, value)
	case UniformPillarWidth:
		u.PillarWidth = mustFloat(name, value)
	case UniformPillarHeight:
		u.PillarHeight = mustFloat(name, value)
	case UniformNoiseIntensity:
		u.NoiseIntensity = mustFloat(name, value)
	case UniformPillarRotation:
		u.PillarRotation = mustFloat(name, value)
	default:
		panic(fmt.Sprintf("lightpillar: unknown uniform %q", name))
	}
}

// Uniforms returns a copy of the currently bound uniform set.
func (p *Pipeline) Uniforms() Uniforms { return p.uniforms }

// Frames returns how many frames have been drawn.
func (p *Pipeline) Frames() int { return p.frames }

// DrawFrame binds st and draws one frame. A zero-size state or surface
// returns ErrZeroDimension without drawing.
func (p *Pipeline) DrawFrame(st RenderState) error {
	if p.released {
		return fmt.Errorf("draw frame: pipeline released")
	}
	if st.Width <= 0 || st.Height <= 0 || !p.surface.Drawable() {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, st.Width, st.Height)
	}
	u := &p.uniforms
	u.Time = st.Elapsed
	u.Resolution = Vec2{X: float64(st.Width), Y: float64(st.Height)}
	if u.Interactive {
		u.Pointer = st.Pointer
	} else {
		u.Pointer = Vec2{}
	}
	u.Intensity = p.base * clamp01(st.Fade)

	if err := p.program.Draw(p.surface.Target(), u); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	p.frames++
	return nil
}

// Release frees the program. Later calls are no-ops.
func (p *Pipeline) Release() {
	if p.released {
		return
	}
	p.released = true
	p.program.Release()
	p.program = nil
}

func mustFloat(name UniformName, v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case float32:
		return float64(f)
	case int:
		return float64(f)
	}
	panic(fmt.Sprintf("lightpillar: uniform %q wants a number, got %T", name, v))
}

func mustVec2(name UniformName, v any) Vec2 {
	if vv, ok := v.(Vec2); ok {
		return vv
	}
	panic(fmt.Sprintf("lightpillar: uniform %q wants Vec2, got %T", name, v))
}

func mustColor(name UniformName, v any) Color {
	if c, ok := v.(Color); ok {
		return c
	}
	panic(fmt.Sprintf("lightpillar: uniform %q wants Color, got %T", name, v))
}
