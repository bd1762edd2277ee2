package analysis

import (
	"github.com/paulmach/orb"

	"github.com/cropsight/cropsight/internal/geo"
	"github.com/cropsight/cropsight/internal/imagery"
)

// pointBufferMeters is the implicit region radius for point analyses.
const pointBufferMeters = 100

// Geometry is the analysis target: a point, or a closed polygon ring.
type Geometry struct {
	Point *orb.Point
	Ring  orb.Ring
}

func PointGeometry(p orb.Point) Geometry {
	return Geometry{Point: &p}
}

func PolygonGeometry(ring orb.Ring) Geometry {
	return Geometry{Ring: ring}
}

// Validate checks the polygon ring contract. Point geometries are always
// valid here; coordinate ranges are the boundary's concern.
func (g Geometry) Validate() error {
	if g.Point != nil {
		return nil
	}
	return geo.ValidateRing(g.Ring)
}

// Region is the reduction target: rings pass through unbuffered, points get
// the fixed buffer.
func (g Geometry) Region() imagery.Region {
	if g.Point != nil {
		return imagery.PointRegion(*g.Point, pointBufferMeters)
	}
	return imagery.PolygonRegion(g.Ring)
}

// Bounds is the footprint used for scene selection.
func (g Geometry) Bounds() orb.Bound {
	if g.Point != nil {
		return geo.ExpandBound(orb.Bound{Min: *g.Point, Max: *g.Point}, pointBufferMeters)
	}
	return g.Ring.Bound()
}
