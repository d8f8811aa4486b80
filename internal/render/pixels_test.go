package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
)

func TestFillRGBAUsesLogicalPositions(t *testing.T) {
	layout := core.NewLayout(core.LayoutSpec{Kind: core.LayoutGrid, Width: 3, Height: 2, Serpentine: true})
	buf := core.NewBuffer(layout.Len())
	// Physical pixel 3 starts the reversed second row, so it sits at (2,1).
	buf[3] = core.RGB{R: 10, G: 20, B: 30}

	img := Image(buf, layout)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	c := img.RGBAAt(2, 1)
	assert.Equal(t, [4]uint8{10, 20, 30, 255}, [4]uint8{c.R, c.G, c.B, c.A})
	assert.Equal(t, uint8(255), img.RGBAAt(0, 0).A)
}

func TestFillRGBAShortDestination(t *testing.T) {
	dst := make([]byte, 3)
	FillRGBA(dst, core.Buffer{{R: 1}}, core.Strip(1))
	assert.Equal(t, []byte{0, 0, 0}, dst)
}

func TestWritePPM(t *testing.T) {
	var out bytes.Buffer
	buf := core.Buffer{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}
	require.NoError(t, WritePPM(&out, buf, core.Strip(2)))
	assert.Equal(t, append([]byte("P6\n2 1\n255\n"), 1, 2, 3, 4, 5, 6), out.Bytes())
}

func TestSaveFramePicksFormat(t *testing.T) {
	dir := t.TempDir()
	buf := core.Buffer{{R: 255}}
	ppm := filepath.Join(dir, "f.ppm")
	pngPath := filepath.Join(dir, "f.png")
	require.NoError(t, SaveFrame(ppm, buf, core.Strip(1)))
	require.NoError(t, SaveFrame(pngPath, buf, core.Strip(1)))

	data, err := os.ReadFile(ppm)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("P6")))
	data, err = os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestDigestIsOrderSensitive(t *testing.T) {
	a, b := core.Buffer{{R: 1}}, core.Buffer{{G: 1}}
	d1, d2 := NewDigest(), NewDigest()
	d1.Add(a)
	d1.Add(b)
	d2.Add(b)
	d2.Add(a)
	assert.NotEqual(t, d1.Sum(), d2.Sum())
	assert.Equal(t, 2, d1.Frames())
	assert.Equal(t, Hash(a), Hash(core.Buffer{{R: 1}}))
	assert.Len(t, Hash(a), 64)
}
