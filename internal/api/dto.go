package api

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/cropsight/cropsight/internal/analysis"
	"github.com/cropsight/cropsight/internal/geo"
)

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type dateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// geometryDTO is the request fragment shared by every analysis-shaped
// endpoint: exactly one of point or polygon. Polygon vertices are [lng, lat]
// pairs; open rings are closed before validation.
type geometryDTO struct {
	Point   *pointDTO   `json:"point"`
	Polygon [][]float64 `json:"polygon"`
}

type analysisRequest struct {
	geometryDTO
	Index string `json:"index"`
	All   bool   `json:"all"`
}

type yieldRequest struct {
	geometryDTO
	CropType  string        `json:"cropType"`
	DateRange *dateRangeDTO `json:"dateRange"`
}

type heatmapRequest struct {
	geometryDTO
	CropType string `json:"cropType"`
}

type recommendRequest struct {
	geometryDTO
	DateRange *dateRangeDTO `json:"dateRange"`
}

type timeseriesRequest struct {
	geometryDTO
	Index string `json:"index"`
	Days  int    `json:"days"`
}

// geometrySummary echoes the analyzed region back to the client. AreaHa is
// present for polygons only.
type geometrySummary struct {
	Centroid []float64   `json:"centroid"`
	Bounds   [][]float64 `json:"bounds"`
	AreaHa   *float64    `json:"areaHa,omitempty"`
}

// geometry converts the DTO into the analysis type. The ring return is nil
// for points.
func (g geometryDTO) geometry() (analysis.Geometry, orb.Ring, error) {
	if (g.Point == nil) == (len(g.Polygon) == 0) {
		return analysis.Geometry{}, nil, fmt.Errorf("exactly one of point or polygon must be provided")
	}

	if g.Point != nil {
		return analysis.PointGeometry(orb.Point{g.Point.Lng, g.Point.Lat}), nil, nil
	}

	ring := make(orb.Ring, 0, len(g.Polygon)+1)
	for _, pair := range g.Polygon {
		if len(pair) != 2 {
			return analysis.Geometry{}, nil, fmt.Errorf("polygon vertices must be [lng, lat] pairs")
		}
		ring = append(ring, orb.Point{pair[0], pair[1]})
	}
	ring = geo.CloseRing(ring)
	return analysis.PolygonGeometry(ring), ring, nil
}

func summarize(geom analysis.Geometry, ring orb.Ring) geometrySummary {
	bounds := geom.Bounds()
	summary := geometrySummary{
		Bounds: [][]float64{
			{bounds.Min[0], bounds.Min[1]},
			{bounds.Max[0], bounds.Max[1]},
		},
	}
	if ring != nil {
		c := geo.Centroid(ring)
		summary.Centroid = []float64{c[0], c[1]}
		area := geo.AreaHectares(ring)
		summary.AreaHa = &area
	} else {
		p := *geom.Point
		summary.Centroid = []float64{p[0], p[1]}
	}
	return summary
}
