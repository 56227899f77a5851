package lightpillar

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoFrame is returned by Snapshot when there is nothing to capture.
var ErrNoFrame = errors.New("lightpillar: no frame to capture")

// Snapshot copies the most recent frame into a straight-alpha image.
func (e *Effect) Snapshot() (*image.NRGBA, error) {
	if e.surface == nil || !e.surface.Drawable() {
		return nil, ErrNoFrame
	}
	return captureTarget(e.surface.Target())
}

// captureTarget reads a target's pixels. Both devices produce premultiplied
// RGBA; the result is un-premultiplied.
func captureTarget(t Target) (*image.NRGBA, error) {
	w, h := t.Size()
	var pixels []byte
	switch tt := t.(type) {
	case *softwareTarget:
		if tt.img == nil {
			return nil, ErrNoFrame
		}
		pixels = tt.img.Pix
	case *ebitenTarget:
		if tt.image == nil {
			return nil, ErrNoFrame
		}
		pixels = make([]byte, 4*w*h)
		tt.image.ReadPixels(pixels)
	default:
		return nil, fmt.Errorf("capture: unsupported target %T", t)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img, nil
}

// SaveSnapshot writes the current frame as "<dir>/<label>.png" and returns
// the path. The label is sanitized for use as a file name.
func (e *Effect) SaveSnapshot(dir, label string) (string, error) {
	img, err := e.Snapshot()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, sanitizeLabel(label)+".png")
	if err := writePNG(path, img); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel turns a snapshot label into a file-name stem. Only ASCII
// letters, digits, '-' and '.' survive; every other rune becomes '_'.
func sanitizeLabel(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
