package core

import "math"

// RGB is a single 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// Black is the zero pixel.
var Black = RGB{}

// Buffer is an ordered run of pixels, one per physical index.
type Buffer []RGB

// NewBuffer allocates an all-black buffer of n pixels.
func NewBuffer(n int) Buffer {
	if n < 0 {
		n = 0
	}
	return make(Buffer, n)
}

// Clone returns an independent copy of the buffer.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}

// Clear resets every pixel to black.
func (b Buffer) Clear() {
	for i := range b {
		b[i] = Black
	}
}

// Fill sets every pixel to c.
func (b Buffer) Fill(c RGB) {
	for i := range b {
		b[i] = c
	}
}

// Bytes flattens the buffer into r,g,b triples.
func (b Buffer) Bytes() []byte {
	out := make([]byte, 0, len(b)*3)
	for _, p := range b {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// Channel rounds v to the nearest integer and clamps it into [0, 255].
func Channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Scale multiplies every channel by f.
func (c RGB) Scale(f float64) RGB {
	return RGB{Channel(float64(c.R) * f), Channel(float64(c.G) * f), Channel(float64(c.B) * f)}
}

// Map applies fn to each channel.
func (c RGB) Map(fn func(uint8) uint8) RGB {
	return RGB{fn(c.R), fn(c.G), fn(c.B)}
}

// HSV converts hue (0..1, wrapping), saturation and value (0..1) into RGB.
func HSV(h, s, v float64) RGB {
	h -= math.Floor(h)
	s = Clamp(s, 0, 1)
	v = Clamp(v, 0, 1)
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return RGB{Channel(r * 255), Channel(g * 255), Channel(b * 255)}
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
