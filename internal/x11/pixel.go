package x11

import (
	"math"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/jmylchreest/linereader/internal/model"
)

// argbPixel returns a premultiplied ARGB32 pixel for a 32-bit visual.
func argbPixel(c model.Color) uint32 {
	premul := func(v uint8) uint32 {
		return uint32(math.Round(float64(v) * float64(c.A) / 255))
	}
	return uint32(c.A)<<24 | premul(c.R)<<16 | premul(c.G)<<8 | premul(c.B)
}

// rgbPixel returns an opaque pixel for a 24-bit TrueColor visual.
func rgbPixel(c model.Color) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// opacity maps the alpha channel to a _NET_WM_WINDOW_OPACITY fraction.
func opacity(c model.Color) float64 {
	return float64(c.A) / 255
}

// clipRect converts r to an X rectangle clipped to a window of size w x h.
// It reports false when nothing remains.
func clipRect(r model.Rect, w, h int) (xproto.Rectangle, bool) {
	clipped := r.Intersect(model.Rect{Width: w, Height: h})
	if clipped.Empty() {
		return xproto.Rectangle{}, false
	}
	return xproto.Rectangle{
		X:      int16(clipped.X),
		Y:      int16(clipped.Y),
		Width:  uint16(clipped.Width),
		Height: uint16(clipped.Height),
	}, true
}
