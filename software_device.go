package lightpillar

import (
	"fmt"
	"image"
	"math"
	"runtime"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// SoftwareDevice evaluates the field on the CPU with Uniforms.Shade. It is
// always available, which makes it the fallback for headless rendering and
// the reference in tests.
type SoftwareDevice struct {
	// Scale renders at a fraction of the target resolution and upsamples
	// bilinearly. Zero or values >= 1 render at full resolution.
	Scale float64
	// Workers bounds the number of row bands shaded in parallel. Zero uses
	// GOMAXPROCS.
	Workers int
}

// NewSoftwareDevice returns a full-resolution CPU device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// Name returns "software".
func (d *SoftwareDevice) Name() string { return "software" }

// Probe always succeeds.
func (d *SoftwareDevice) Probe() error { return nil }

// NewTarget allocates an RGBA image of w×h pixels.
func (d *SoftwareDevice) NewTarget(w, h int) (Target, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroDimension, w, h)
	}
	return &softwareTarget{img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// NewProgram returns a CPU program bound to this device's settings.
func (d *SoftwareDevice) NewProgram() (Program, error) {
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scale := d.Scale
	if scale <= 0 || scale >= 1 {
		scale = 1
	}
	return &softwareProgram{scale: scale, workers: workers}, nil
}

// softwareTarget is an in-memory RGBA canvas.
type softwareTarget struct {
	img *image.RGBA
}

func (t *softwareTarget) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the canvas, or nil once released.
func (t *softwareTarget) Image() *image.RGBA { return t.img }

func (t *softwareTarget) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, w, h)
	}
	if cw, ch := t.Size(); t.img != nil && cw == w && ch == h {
		return nil
	}
	t.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

func (t *softwareTarget) Release() {
	t.img = nil
}

type softwareProgram struct {
	scale    float64
	workers  int
	low      *image.RGBA // reduced-resolution buffer when scale < 1
	released bool
}

func (p *softwareProgram) Draw(dst Target, u *Uniforms) error {
	if p.released {
		return fmt.Errorf("draw: program released")
	}
	t, ok := dst.(*softwareTarget)
	if !ok {
		return fmt.Errorf("draw: target %T is not a software target", dst)
	}
	if t.img == nil {
		return fmt.Errorf("draw: target released")
	}
	w, h := t.Size()
	if p.scale == 1 {
		return p.shade(t.img, *u)
	}

	lw := max(int(math.Ceil(float64(w)*p.scale)), 1)
	lh := max(int(math.Ceil(float64(h)*p.scale)), 1)
	if p.low == nil || p.low.Bounds().Dx() != lw || p.low.Bounds().Dy() != lh {
		p.low = image.NewRGBA(image.Rect(0, 0, lw, lh))
	}
	lu := *u
	lu.Resolution = Vec2{X: float64(lw), Y: float64(lh)}
	if err := p.shade(p.low, lu); err != nil {
		return err
	}
	xdraw.BiLinear.Scale(t.img, t.img.Bounds(), p.low, p.low.Bounds(), xdraw.Src, nil)
	return nil
}

// shade fills img row band by row band. Uniforms are passed by value so
// every worker reads its own copy.
func (p *softwareProgram) shade(img *image.RGBA, u Uniforms) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	bands := min(p.workers, h)
	rowsPer := (h + bands - 1) / bands

	var g errgroup.Group
	g.SetLimit(p.workers)
	for y0 := 0; y0 < h; y0 += rowsPer {
		y1 := min(y0+rowsPer, h)
		g.Go(func() error {
			uu := u
			for y := y0; y < y1; y++ {
				row := img.Pix[y*img.Stride : y*img.Stride+w*4]
				for x := 0; x < w; x++ {
					c := uu.ShadePixel(x, y)
					i := x * 4
					row[i+0] = uint8(c.R*255 + 0.5)
					row[i+1] = uint8(c.G*255 + 0.5)
					row[i+2] = uint8(c.B*255 + 0.5)
					row[i+3] = 0xff
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *softwareProgram) Release() {
	p.released = true
	p.low = nil
}
