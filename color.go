package lightpillar

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ResolveColor parses a color spec into an opaque Color with normalized RGB
// components. Accepted forms are "#rrggbb" and "#rgb"; the leading '#' may
// be omitted. Components are sRGB values divided by 255, not linearized.
func ResolveColor(spec string) (Color, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrInvalidColorSpec)
	}
	if s[0] != '#' {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColorSpec, spec)
	}
	for _, r := range s[1:] {
		if !isHexDigit(r) {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColorSpec, spec)
		}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorSpec, spec, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// Hex formats the RGB part of c as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hex()
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
