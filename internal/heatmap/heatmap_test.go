package heatmap

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/cropsight/cropsight/internal/geo"
)

func squareRing() orb.Ring {
	return orb.Ring{{0, 0}, {0, 0.01}, {0.01, 0.01}, {0.01, 0}, {0, 0}}
}

func circleRing(n int) orb.Ring {
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{0.01 * math.Cos(a), 0.01 * math.Sin(a)})
	}
	return append(ring, ring[0])
}

func TestGenerate(t *testing.T) {
	m, err := Generate(squareRing(), 0.7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(m.Points) != 4 {
		t.Fatalf("expected one point per vertex, got %d", len(m.Points))
	}
	if m.Center[0] != 0.005 || m.Center[1] != 0.005 {
		t.Errorf("expected center (0.005, 0.005), got %v", m.Center)
	}
	if m.Score != 0.7 {
		t.Errorf("expected score 0.7, got %v", m.Score)
	}
	for i, p := range m.Points {
		if p.Intensity < 0 || p.Intensity > 1 {
			t.Errorf("point %d: intensity %v out of [0,1]", i, p.Intensity)
		}
		if (p.Lng != 0 && p.Lng != 0.01) || (p.Lat != 0 && p.Lat != 0.01) {
			t.Errorf("point %d: not on a ring vertex: (%v, %v)", i, p.Lng, p.Lat)
		}
	}
}

func TestGenerateCapsSampleCount(t *testing.T) {
	m, err := Generate(circleRing(500), 0.5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(m.Points) != maxPoints {
		t.Errorf("expected %d points for a 500-vertex ring, got %d", maxPoints, len(m.Points))
	}
}

func TestGenerateStableStructure(t *testing.T) {
	a, err := Generate(squareRing(), 0.6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate(squareRing(), 0.6)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(a.Points) != len(b.Points) {
		t.Fatalf("point counts differ: %d vs %d", len(a.Points), len(b.Points))
	}
	// Positions are deterministic even though intensities jitter.
	for i := range a.Points {
		if a.Points[i].Lng != b.Points[i].Lng || a.Points[i].Lat != b.Points[i].Lat {
			t.Errorf("point %d moved between calls", i)
		}
	}
	if a.Center != b.Center {
		t.Errorf("center moved between calls: %v vs %v", a.Center, b.Center)
	}
}

func TestGenerateFalloffUsesBoundingBoxCorner(t *testing.T) {
	// A diamond whose vertices sit at distance 1 from the center while the
	// bounding-box corners sit at sqrt(2). The vertex falloff is then
	// 1 - 0.5/sqrt(2) ~ 0.646, so even the strongest downward jitter keeps
	// the intensity above the 0.55 a vertex-radius falloff would allow.
	diamond := orb.Ring{{1, 0}, {2, 1}, {1, 2}, {0, 1}, {1, 0}}
	m, err := Generate(diamond, 1.0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, p := range m.Points {
		if p.Intensity <= 0.55 {
			t.Errorf("point %d: intensity %v too low for a corner-radius falloff", i, p.Intensity)
		}
	}
}

func TestGenerateZeroScore(t *testing.T) {
	m, err := Generate(squareRing(), 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, p := range m.Points {
		if p.Intensity != 0 {
			t.Errorf("point %d: expected zero intensity, got %v", i, p.Intensity)
		}
	}
}

func TestGenerateClampsHighScores(t *testing.T) {
	m, err := Generate(squareRing(), 2.5)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, p := range m.Points {
		if p.Intensity > 1 {
			t.Errorf("point %d: intensity %v above 1", i, p.Intensity)
		}
	}
}

func TestGenerateRejectsOpenRing(t *testing.T) {
	_, err := Generate(orb.Ring{{0, 0}, {0, 0.01}, {0.01, 0.01}}, 0.5)
	if err == nil {
		t.Fatal("expected an open ring to be rejected")
	}
	var verr *geo.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestRenderPNG(t *testing.T) {
	m, err := Generate(squareRing(), 0.7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderPNG(&buf, squareRing(), m, 256); err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	if cfg.Width != 256 || cfg.Height != 256 {
		t.Errorf("expected a 256x256 image, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderPNGDegenerateRing(t *testing.T) {
	flat := orb.Ring{{0, 0}, {0.01, 0}, {0.02, 0}, {0, 0}}
	m := &Map{Points: []Point{{Lng: 0.01, Lat: 0, Intensity: 0.5}}}
	if err := RenderPNG(&bytes.Buffer{}, flat, m, 128); err == nil {
		t.Fatal("expected a flat ring to be rejected")
	}
}
