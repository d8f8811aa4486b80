// Package render turns engine output into images and digests for hosts.
package render

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pixelcore/internal/core"
)

// FillRGBA converts buf into opaque RGBA pixels in dst, placing every
// physical pixel at its logical position in layout. dst must hold
// 4*W*H bytes for layout.Size(); shorter buffers are left untouched.
func FillRGBA(dst []byte, buf core.Buffer, layout *core.Layout) {
	size := layout.Size()
	if len(dst) < 4*size.W*size.H {
		return
	}
	n := min(len(buf), layout.Len())
	for i := 0; i < n; i++ {
		x, y := layout.Coord(i)
		base := 4 * (y*size.W + x)
		px := buf[i]
		dst[base+0] = px.R
		dst[base+1] = px.G
		dst[base+2] = px.B
		dst[base+3] = 255
	}
}

// Image returns the frame as an RGBA image in logical orientation.
func Image(buf core.Buffer, layout *core.Layout) *image.RGBA {
	size := layout.Size()
	img := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	FillRGBA(img.Pix, buf, layout)
	return img
}

// WritePPM encodes the frame as a binary PPM (P6).
func WritePPM(w io.Writer, buf core.Buffer, layout *core.Layout) error {
	img := Image(buf, layout)
	size := layout.Size()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", size.W, size.H); err != nil {
		return err
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if _, err := bw.Write(img.Pix[i : i+3]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveFrame writes the frame to path. Files ending in .ppm are written as
// PPM, everything else as PNG.
func SaveFrame(path string, buf core.Buffer, layout *core.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		return WritePPM(f, buf, layout)
	}
	return png.Encode(f, Image(buf, layout))
}

// Digest accumulates a content hash over a sequence of frames.
type Digest struct {
	h      hash.Hash
	frames int
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// Add folds one frame into the digest.
func (d *Digest) Add(buf core.Buffer) {
	_, _ = d.h.Write(buf.Bytes())
	d.frames++
}

// Frames returns how many frames were added.
func (d *Digest) Frames() int { return d.frames }

// Sum returns the hex encoded hash of every frame added so far.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Hash is the digest of a single frame.
func Hash(buf core.Buffer) string {
	d := NewDigest()
	d.Add(buf)
	return d.Sum()
}
