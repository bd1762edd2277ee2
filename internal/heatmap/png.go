package heatmap

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
)

const (
	defaultImageSize = 512
	imageMargin      = 16.0
)

// RenderPNG draws the heatmap over the ring's bounding box and writes a
// square PNG. Intensity maps onto a red-yellow-green ramp.
func RenderPNG(w io.Writer, ring orb.Ring, m *Map, size int) error {
	if size <= 0 {
		size = defaultImageSize
	}
	b := ring.Bound()
	spanX := b.Max[0] - b.Min[0]
	spanY := b.Max[1] - b.Min[1]
	if spanX == 0 || spanY == 0 {
		return fmt.Errorf("ring has no areal extent")
	}

	inner := float64(size) - 2*imageMargin
	px := func(p orb.Point) (float64, float64) {
		x := imageMargin + (p[0]-b.Min[0])/spanX*inner
		y := float64(size) - (imageMargin + (p[1]-b.Min[1])/spanY*inner)
		return x, y
	}

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Field outline.
	for i, p := range ring {
		x, y := px(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(2)
	dc.Stroke()

	radius := float64(size) / 32
	for _, pt := range m.Points {
		x, y := px(orb.Point{pt.Lng, pt.Lat})
		r, g, bl := intensityColor(pt.Intensity)
		dc.SetRGBA(r, g, bl, 0.75)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}

	return dc.EncodePNG(w)
}

// intensityColor maps 0..1 onto red at 0, yellow at 0.5, green at 1.
func intensityColor(v float64) (r, g, b float64) {
	if v < 0.5 {
		return 1, v * 2, 0
	}
	return 1 - (v-0.5)*2, 1, 0
}
