package lightpillar

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// The effect only uses the RGB part for its gradient endpoints.
type Color struct {
	R, G, B, A float64
}

// Transparent is fully transparent black. The degraded-mode background.
var Transparent = Color{}

// Vec2 is a 2D vector used for pointer positions and resolutions.
type Vec2 struct {
	X, Y float64
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return length2(v.X, v.Y)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether r has no measurable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// BlendMode selects how the rendered surface is composited onto whatever is
// behind it. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendBelow                     // destination-over (draw behind existing content)
	BlendNone                      // opaque copy (skip blending)
	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	BlendNormal:   "normal",
	BlendAdd:      "add",
	BlendMultiply: "multiply",
	BlendScreen:   "screen",
	BlendBelow:    "below",
	BlendNone:     "none",
}

// Valid reports whether b is one of the defined blend modes.
func (b BlendMode) Valid() bool {
	return b < blendModeCount
}

// String returns the lower-case name used in config files.
func (b BlendMode) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlendMode(%d)", uint8(b))
	}
	return blendModeNames[b]
}

// ParseBlendMode maps a config name to a BlendMode. The empty string is
// BlendNormal. "lighter" is accepted as an alias for "add".
func ParseBlendMode(s string) (BlendMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return BlendNormal, nil
	case "lighter":
		return BlendAdd, nil
	}
	for i, n := range blendModeNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b BlendMode) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid blend mode %d", uint8(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlendMode) UnmarshalText(text []byte) error {
	m, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*b = m
	return nil
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendBelow:
		return ebiten.BlendDestinationOver
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// toRGBA converts a Color to a premultiplied colorRGBA for image fills.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
