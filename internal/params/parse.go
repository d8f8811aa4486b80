package params

import (
	"strconv"
	"strings"

	"pixelcore/internal/core"
)

// Number interprets a stored parameter as a float. Booleans map to 0/1 and
// numeric strings are parsed.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// ParseColor interprets a stored color: [r, g, b], {r, g, b}, "#rrggbb" or
// "r,g,b". Channels are clamped to [0, 255].
func ParseColor(v any) (core.RGB, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) < 3 {
			return core.Black, false
		}
		var ch [3]float64
		for i := 0; i < 3; i++ {
			f, ok := Number(t[i])
			if !ok {
				return core.Black, false
			}
			ch[i] = f
		}
		return core.RGB{R: core.Channel(ch[0]), G: core.Channel(ch[1]), B: core.Channel(ch[2])}, true
	case []int:
		if len(t) < 3 {
			return core.Black, false
		}
		return core.RGB{R: core.Channel(float64(t[0])), G: core.Channel(float64(t[1])), B: core.Channel(float64(t[2]))}, true
	case map[string]any:
		r, okR := Number(t["r"])
		g, okG := Number(t["g"])
		b, okB := Number(t["b"])
		if !okR || !okG || !okB {
			return core.Black, false
		}
		return core.RGB{R: core.Channel(r), G: core.Channel(g), B: core.Channel(b)}, true
	case core.RGB:
		return t, true
	case string:
		return parseColorString(t)
	}
	return core.Black, false
}

func parseColorString(s string) (core.RGB, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return core.Black, false
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return core.Black, false
		}
		return core.RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, true
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Black, false
	}
	list := make([]any, 3)
	for i, p := range parts {
		list[i] = p
	}
	return ParseColor(list)
}
