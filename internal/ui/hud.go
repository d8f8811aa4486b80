//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status panel to the right of the pixel view.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	lines      []string
	visible    bool
}

// NewHUD constructs a HUD with the provided panel width.
func NewHUD(width int) *HUD {
	if width < 0 {
		width = 0
	}
	return &HUD{width: width, visible: true}
}

// Width returns the horizontal space the panel needs, 0 when hidden.
func (h *HUD) Width() int {
	if h == nil || !h.visible {
		return 0
	}
	return h.width
}

// Toggle shows or hides the panel.
func (h *HUD) Toggle() { h.visible = !h.visible }

// Update caches the text for the next Draw.
func (h *HUD) Update(s Status) {
	if h == nil {
		return
	}
	h.lines = s.Lines()
}

// Draw paints the panel at offsetX. Lines that do not fit are dropped.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.Width() <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	maxChars := (h.width - 2*panelPadding) / 7
	y := panelPadding + headerBaseline
	for i, line := range h.lines {
		if y > height-panelPadding {
			break
		}
		if maxChars > 0 && len(line) > maxChars {
			line = line[:maxChars]
		}
		col := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if i == 0 {
			col = color.RGBA{R: 200, G: 200, B: 210, A: 255}
		}
		text.Draw(h.panel, line, face, panelPadding, y, col)
		y += lineHeight
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

const (
	panelPadding   = 12
	lineHeight     = 16
	headerBaseline = 12
)
