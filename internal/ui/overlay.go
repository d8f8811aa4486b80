//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"pixelcore/internal/core"
)

// Overlay dims every pixel outside the mask selected in its cycler.
type Overlay struct {
	Masks *MaskCycler
	scale int

	key     string
	maskImg *ebiten.Image
	maskBuf []byte
}

// NewOverlay constructs an overlay drawing at the given pixel scale.
func NewOverlay(scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{Masks: NewMaskCycler(), scale: scale}
}

// Draw renders the overlay onto screen for layout.
func (o *Overlay) Draw(screen *ebiten.Image, layout *core.Layout) {
	if o.Masks.Selected() == "" {
		return
	}
	set, err := o.Masks.Set()
	size := layout.Size()
	if o.maskImg == nil || o.key != layout.Key() {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*size.W*size.H)
		o.key = layout.Key()
	}
	tint := color.RGBA{A: 170}
	if err != nil {
		tint = color.RGBA{R: 120, A: 170}
	}
	for i := 0; i < layout.Len(); i++ {
		x, y := layout.Coord(i)
		base := 4 * (y*size.W + x)
		if err == nil && set.Contains(i) {
			o.maskBuf[base+0] = 0
			o.maskBuf[base+1] = 0
			o.maskBuf[base+2] = 0
			o.maskBuf[base+3] = 0
			continue
		}
		o.maskBuf[base+0] = tint.R
		o.maskBuf[base+1] = tint.G
		o.maskBuf[base+2] = tint.B
		o.maskBuf[base+3] = tint.A
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}
