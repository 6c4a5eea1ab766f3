package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/linereader/internal/model"
)

func TestARGBPixel(t *testing.T) {
	tests := []struct {
		name  string
		color model.Color
		want  uint32
	}{
		{"opaque", model.RGBA(0x12, 0x34, 0x56, 0xff), 0xff123456},
		{"transparent", model.RGBA(0xff, 0xff, 0xff, 0), 0x00000000},
		{"default band", model.RGBA(255, 128, 1, 32), 0x20201000},
		{"half", model.RGBA(200, 100, 50, 128), 0x80643219},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, argbPixel(tt.color))
		})
	}
}

func TestRGBPixel(t *testing.T) {
	assert.Equal(t, uint32(0xff8001), rgbPixel(model.RGBA(255, 128, 1, 32)))
}

func TestOpacity(t *testing.T) {
	assert.InDelta(t, 1.0, opacity(model.RGBA(0, 0, 0, 255)), 1e-9)
	assert.InDelta(t, 32.0/255, opacity(model.RGBA(0, 0, 0, 32)), 1e-9)
}

func TestClipRect(t *testing.T) {
	tests := []struct {
		name   string
		rect   model.Rect
		want   xproto.Rectangle
		wantOK bool
	}{
		{"inside", model.Rect{X: 0, Y: 290, Width: 1920, Height: 20}, xproto.Rectangle{X: 0, Y: 290, Width: 1920, Height: 20}, true},
		{"top edge", model.Rect{X: 0, Y: -10, Width: 1920, Height: 20}, xproto.Rectangle{X: 0, Y: 0, Width: 1920, Height: 10}, true},
		{"bottom edge", model.Rect{X: 0, Y: 1075, Width: 1920, Height: 20}, xproto.Rectangle{X: 0, Y: 1075, Width: 1920, Height: 5}, true},
		{"outside", model.Rect{X: 0, Y: 2000, Width: 1920, Height: 20}, xproto.Rectangle{}, false},
		{"zero height", model.Rect{X: 0, Y: 300, Width: 1920, Height: 0}, xproto.Rectangle{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := clipRect(tt.rect, 1920, 1080)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastKey(t *testing.T) {
	assert.Equal(t, "l", lastKey("Mod4-Shift-l"))
	assert.Equal(t, "F5", lastKey("F5"))
}

func TestFindARGBVisual(t *testing.T) {
	screen := &xproto.ScreenInfo{
		AllowedDepths: []xproto.DepthInfo{
			{Depth: 24, Visuals: []xproto.VisualInfo{{VisualId: 0x21, Class: xproto.VisualClassTrueColor}}},
			{Depth: 32, Visuals: []xproto.VisualInfo{{VisualId: 0x5a, Class: xproto.VisualClassTrueColor}}},
		},
	}
	id, ok := findARGBVisual(screen)
	assert.True(t, ok)
	assert.Equal(t, xproto.Visualid(0x5a), id)

	_, ok = findARGBVisual(&xproto.ScreenInfo{})
	assert.False(t, ok)
}
