package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/linereader/internal/model"
)

// IconSize is the edge length of the rendered tray icon.
const IconSize = 64

// iconBase is the edge length of the pixel-art source the icon is scaled from.
const iconBase = 16

var (
	pageColor = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	textColor = color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
)

// renderBase draws a page of text lines crossed by the band on a
// transparent background.
func renderBase(band model.Color, active bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconBase, iconBase))

	page := image.Rect(2, 1, 14, 15)
	draw.Draw(img, page, image.NewUniform(pageColor), image.Point{}, draw.Src)

	for y := 3; y < 14; y += 2 {
		draw.Draw(img, image.Rect(4, y, 12, y+1), image.NewUniform(textColor), image.Point{}, draw.Src)
	}

	// The band color is drawn opaque so low-alpha bands stay visible.
	bandColor := color.NRGBA{R: band.R, G: band.G, B: band.B, A: 0xff}
	if !active {
		bandColor = dim(bandColor)
	}
	draw.Draw(img, image.Rect(0, 6, iconBase, 10), image.NewUniform(bandColor), image.Point{}, draw.Over)

	if !active {
		fade(img)
	}
	return img
}

// dim converts c to a muted grey of similar luminance.
func dim(c color.NRGBA) color.NRGBA {
	l := uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
	return color.NRGBA{R: l, G: l, B: l, A: c.A}
}

// fade halves the alpha of every pixel.
func fade(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] /= 2
	}
}

// RenderIcon returns the tray icon PNG for the given band color and state.
func RenderIcon(band model.Color, active bool) ([]byte, error) {
	base := renderBase(band, active)

	dst := image.NewNRGBA(image.Rect(0, 0, IconSize, IconSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), base, base.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
