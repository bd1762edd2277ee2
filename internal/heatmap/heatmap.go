// Package heatmap derives intensity points over a field polygon from a
// single weighted score. The surface is decorative: vertex samples with a
// radial falloff and a small random perturbation, not a measured raster.
package heatmap

import (
	"math/rand/v2"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/cropsight/cropsight/internal/geo"
)

// maxPoints caps the sample count for large rings.
const maxPoints = 200

// Point is one intensity sample at a ring vertex.
type Point struct {
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Intensity float64 `json:"intensity"`
}

// Map is a generated heatmap: the bounding-box center the falloff radiates
// from, the score it was built for, and the sampled points.
type Map struct {
	Center orb.Point `json:"center"`
	Score  float64   `json:"score"`
	Points []Point   `json:"points"`
}

// Generate samples the ring's vertices at evenly spaced indices, up to
// maxPoints. Each sample's intensity is the score shaped by distance from
// the bounding-box center (1 at the center, 0.5 at the bounding-box
// corners), perturbed by up to 10 percent either way, and clamped to
// [0,1]. Point positions are deterministic; intensities are not.
func Generate(ring orb.Ring, weightedScore float64) (*Map, error) {
	if err := geo.ValidateRing(ring); err != nil {
		return nil, err
	}
	vertices := geo.Vertices(ring)
	bound := ring.Bound()
	center := bound.Center()

	count := len(vertices)
	if count > maxPoints {
		count = maxPoints
	}
	samples := make([]orb.Point, 0, count)
	for k := 0; k < count; k++ {
		samples = append(samples, vertices[k*len(vertices)/count])
	}

	// The falloff radius is the half-diagonal of the bounding box, so a
	// vertex well inside the box keeps most of the score.
	maxDist := planar.Distance(center, bound.Max)

	points := make([]Point, 0, count)
	for _, s := range samples {
		falloff := 1.0
		if maxDist > 0 {
			falloff = 1 - 0.5*(planar.Distance(center, s)/maxDist)
		}
		jitter := 1 + (rand.Float64()*0.2 - 0.1)
		points = append(points, Point{
			Lng:       s[0],
			Lat:       s[1],
			Intensity: clamp01(weightedScore * falloff * jitter),
		})
	}

	return &Map{Center: center, Score: weightedScore, Points: points}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
