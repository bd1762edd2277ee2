// Package imagery models the remote raster processing service: scene
// catalog lookups, tile rendering, and region reduction. Rasters themselves
// never leave the provider; this side only handles scene metadata, tile URLs
// and reduced statistics.
package imagery

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"github.com/cropsight/cropsight/internal/index"
)

// Scene selection policies.
const (
	SelectMostRecent  = "most_recent"
	SelectLeastCloudy = "least_cloudy"
)

// Scene identifies one provider-side acquisition.
type Scene struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	CloudCover float64   `json:"cloudCover"`
}

// Raster pairs a scene with a band expression. Building a raster is local;
// only render and reduce reach the provider.
type Raster struct {
	SceneID string           `json:"sceneId"`
	Expr    index.Expression `json:"expression"`
}

// Raster builds the raster of the given expression over the scene.
func (s Scene) Raster(expr index.Expression) Raster {
	return Raster{SceneID: s.ID, Expr: expr}
}

// Window is the date range scenes are selected from.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowEndingToday returns the window covering the given number of days up
// to the current UTC date. The end is truncated to day granularity so equal
// queries within a day produce identical windows.
func WindowEndingToday(days int) Window {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Region is a reduction target: a polygon ring, or a point with a buffer
// radius.
type Region struct {
	Type         string     `json:"type"`
	Ring         orb.Ring   `json:"ring,omitempty"`
	Point        *orb.Point `json:"point,omitempty"`
	BufferMeters float64    `json:"bufferMeters,omitempty"`
}

// PolygonRegion wraps a closed ring for reduction.
func PolygonRegion(ring orb.Ring) Region {
	return Region{Type: "polygon", Ring: ring}
}

// PointRegion wraps a point buffered by the given radius.
func PointRegion(p orb.Point, bufferMeters float64) Region {
	return Region{Type: "point", Point: &p, BufferMeters: bufferMeters}
}

// Provider is the session handle to the imagery service. One handle is
// constructed at startup and injected where needed; implementations must be
// safe for concurrent use.
type Provider interface {
	// SelectScene resolves the scene for the bounds and window under the
	// configured selection policy.
	SelectScene(ctx context.Context, bounds orb.Bound, window Window) (Scene, error)
	// ListScenes returns every catalogued scene for the bounds and window,
	// oldest first.
	ListScenes(ctx context.Context, bounds orb.Bound, window Window) ([]Scene, error)
	// Render produces a slippy-map tile URL template containing {z}/{x}/{y}
	// placeholders.
	Render(ctx context.Context, raster Raster, vis index.Visualization) (string, error)
	// Reduce computes the arithmetic mean of the raster over the region,
	// excluding invalid pixels. ok is false when the region holds no valid
	// pixels at all.
	Reduce(ctx context.Context, raster Raster, region Region) (value float64, ok bool, err error)
	// Reachable reports whether the most recent provider call succeeded.
	// A fresh handle reports true until a call has failed.
	Reachable() bool
}
