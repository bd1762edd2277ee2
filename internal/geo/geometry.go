package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadiusMeters = 6378137.0
	metersPerDegree   = 111320.0
)

// ValidationError reports input geometry that violates the API contract.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid geometry: " + e.Reason
}

// CloseRing returns the ring with the first vertex appended when the ring is
// open. Already-closed rings are returned unchanged.
func CloseRing(ring orb.Ring) orb.Ring {
	if len(ring) < 2 {
		return ring
	}
	if ring[0] == ring[len(ring)-1] {
		return ring
	}
	closed := make(orb.Ring, len(ring)+1)
	copy(closed, ring)
	closed[len(ring)] = ring[0]
	return closed
}

// ValidateRing checks that the ring is closed and has at least 3 distinct
// vertices. Callers are expected to close open rings first; this fails fast
// instead of repairing.
func ValidateRing(ring orb.Ring) error {
	if len(ring) == 0 {
		return &ValidationError{Reason: "empty ring"}
	}
	if ring[0] != ring[len(ring)-1] {
		return &ValidationError{Reason: "ring is not closed"}
	}
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	if len(seen) < 3 {
		return &ValidationError{Reason: "ring needs at least 3 distinct vertices"}
	}
	return nil
}

// Vertices returns the ring's vertices without the closing duplicate.
func Vertices(ring orb.Ring) []orb.Point {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// Centroid is the arithmetic mean of the ring's vertices, closing duplicate
// excluded. This is intentionally not an area-weighted centroid.
func Centroid(ring orb.Ring) orb.Point {
	pts := Vertices(ring)
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sumLng, sumLat float64
	for _, p := range pts {
		sumLng += p[0]
		sumLat += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sumLng / n, sumLat / n}
}

// AreaHectares computes the ring's area in hectares using the spherical
// excess formula on a sphere of radius 6378137 m. Vertex order does not
// matter; the result is always positive.
func AreaHectares(ring orb.Ring) float64 {
	if len(ring) < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		p1 := ring[i]
		p2 := ring[i+1]
		sum += radians(p2[0]-p1[0]) * (2 + math.Sin(radians(p1[1])) + math.Sin(radians(p2[1])))
	}
	areaSqM := math.Abs(sum * earthRadiusMeters * earthRadiusMeters / 2)
	return areaSqM / 10000
}

// ExpandBound grows a bound by the given distance on every side, using the
// flat meters-per-degree approximation. Used to turn a buffered point into
// scene-selection bounds.
func ExpandBound(b orb.Bound, meters float64) orb.Bound {
	d := meters / metersPerDegree
	return orb.Bound{
		Min: orb.Point{b.Min[0] - d, b.Min[1] - d},
		Max: orb.Point{b.Max[0] + d, b.Max[1] + d},
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
