package lightpillar

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is redrawn, in seconds.
const fpsRefresh = 0.5

// fpsOverlay draws the current FPS and TPS in the top-left corner of the
// window. The text image is refreshed every fpsRefresh seconds.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	dirty   bool
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &fpsOverlay{img: ebiten.NewImage(100, 32), dirty: true}
}

func (f *fpsOverlay) update(dt float64) {
	f.elapsed += dt
	if !f.dirty && f.elapsed < fpsRefresh {
		return
	}
	f.elapsed = 0
	f.dirty = false

	f.img.Clear()
	// Semi-transparent background for readability
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (f *fpsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(f.img, nil)
}
