//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"pixelcore/internal/core"
)

// Painter keeps one RGBA image in sync with engine frames.
type Painter struct {
	key string
	img *ebiten.Image
	buf []byte
}

// NewPainter returns a painter that sizes itself on the first Blit.
func NewPainter() *Painter { return &Painter{} }

// Blit uploads buf into the painter image and draws it scaled onto dst.
func (p *Painter) Blit(dst *ebiten.Image, buf core.Buffer, layout *core.Layout, scale int) {
	if scale <= 0 {
		scale = 1
	}
	if p.img == nil || p.key != layout.Key() {
		size := layout.Size()
		p.img = ebiten.NewImage(size.W, size.H)
		p.buf = make([]byte, 4*size.W*size.H)
		p.key = layout.Key()
	}
	FillRGBA(p.buf, buf, layout)
	p.img.WritePixels(p.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(p.img, op)
}
