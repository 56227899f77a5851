package lightpillar

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDevice renders the field with a Kage shader through Ebitengine.
type EbitenDevice struct{}

// NewEbitenDevice returns the GPU device.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// Name returns "ebiten".
func (d *EbitenDevice) Name() string { return "ebiten" }

// Probe allocates and frees a throwaway 1x1 image and compiles the field
// shader. Ebitengine panics rather than erroring on allocation failure;
// probeDevice recovers those. Before RunGame the graphics driver is not yet
// up, so a missing GPU context surfaces later as the RunGame error.
func (d *EbitenDevice) Probe() error {
	img := ebiten.NewImage(1, 1)
	img.Deallocate()
	s, err := ebiten.NewShader([]byte(fieldShaderSrc))
	if err != nil {
		return fmt.Errorf("compile field shader: %w", err)
	}
	s.Deallocate()
	return nil
}

// NewTarget allocates an offscreen image of w×h pixels.
func (d *EbitenDevice) NewTarget(w, h int) (t Target, err error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroDimension, w, h)
	}
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("new image %dx%d: %v", w, h, r)
		}
	}()
	return &ebitenTarget{image: ebiten.NewImage(w, h), w: w, h: h}, nil
}

// NewProgram compiles the Kage field shader.
func (d *EbitenDevice) NewProgram() (Program, error) {
	s, err := ebiten.NewShader([]byte(fieldShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("compile field shader: %w", err)
	}
	p := &ebitenProgram{
		shader:   s,
		uniforms: make(map[string]any, 12),
	}
	// Vector uniforms point into persistent arrays so binding never allocates.
	p.resolution = p.buf[0:2]
	p.pointer = p.buf[2:4]
	p.top = p.buf[4:7]
	p.bottom = p.buf[7:10]
	p.uniforms["Resolution"] = p.resolution
	p.uniforms["Pointer"] = p.pointer
	p.uniforms["TopColor"] = p.top
	p.uniforms["BottomColor"] = p.bottom
	return p, nil
}

// ebitenTarget is a persistent offscreen canvas, reallocated on resize.
type ebitenTarget struct {
	image *ebiten.Image
	w, h  int
}

func (t *ebitenTarget) Size() (int, int) { return t.w, t.h }

// Image returns the underlying image, or nil once released.
func (t *ebitenTarget) Image() *ebiten.Image { return t.image }

// Resize deallocates the old image and creates a new one at the given size.
func (t *ebitenTarget) Resize(w, h int) (err error) {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, w, h)
	}
	if t.image != nil && t.w == w && t.h == h {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resize image %dx%d: %v", w, h, r)
		}
	}()
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
	t.image = ebiten.NewImage(w, h)
	t.w, t.h = w, h
	return nil
}

func (t *ebitenTarget) Release() {
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
}

// ebitenProgram owns the compiled shader and its uniform map.
type ebitenProgram struct {
	shader   *ebiten.Shader
	uniforms map[string]any
	buf      [10]float32
	// slices into buf, pre-stored in uniforms
	resolution, pointer, top, bottom []float32
	shaderOp                         ebiten.DrawRectShaderOptions
}

func (p *ebitenProgram) bind(u *Uniforms) {
	p.resolution[0], p.resolution[1] = float32(u.Resolution.X), float32(u.Resolution.Y)
	p.pointer[0], p.pointer[1] = float32(u.Pointer.X), float32(u.Pointer.Y)
	p.top[0], p.top[1], p.top[2] = float32(u.TopColor.R), float32(u.TopColor.G), float32(u.TopColor.B)
	p.bottom[0], p.bottom[1], p.bottom[2] = float32(u.BottomColor.R), float32(u.BottomColor.G), float32(u.BottomColor.B)

	// Scalar float32 boxing is unavoidable with Ebitengine's uniform API.
	p.uniforms["Time"] = float32(u.Time)
	p.uniforms["Intensity"] = float32(u.Intensity)
	interactive := float32(0)
	if u.Interactive {
		interactive = 1
	}
	p.uniforms["Interactive"] = interactive
	p.uniforms["GlowAmount"] = float32(u.GlowAmount)
	p.uniforms["PillarWidth"] = float32(u.PillarWidth)
	p.uniforms["PillarHeight"] = float32(u.PillarHeight)
	p.uniforms["NoiseIntensity"] = float32(u.NoiseIntensity)
	p.uniforms["PillarRotation"] = float32(u.PillarRotation)
}

func (p *ebitenProgram) Draw(dst Target, u *Uniforms) error {
	if p.shader == nil {
		return fmt.Errorf("draw: program released")
	}
	t, ok := dst.(*ebitenTarget)
	if !ok {
		return fmt.Errorf("draw: target %T is not an ebiten target", dst)
	}
	if t.image == nil {
		return fmt.Errorf("draw: target released")
	}
	p.bind(u)
	p.shaderOp.Uniforms = p.uniforms
	p.shaderOp.Blend = ebiten.BlendCopy
	t.image.DrawRectShader(t.w, t.h, p.shader, &p.shaderOp)
	return nil
}

func (p *ebitenProgram) Release() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}
