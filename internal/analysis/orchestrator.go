// Package analysis coordinates per-index analysis units against the imagery
// provider: one shared scene selection per request, then a concurrent
// render+reduce pair per index.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gammazero/workerpool"
	"golang.org/x/sync/errgroup"

	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/metrics"
)

const defaultWindowDays = 30

// Config tunes the orchestrator.
type Config struct {
	// WindowDays is the scene-selection lookback window.
	WindowDays int
	// Workers bounds the fan-out pool. Clamped so a full batch always runs
	// every index unit at once.
	Workers int
}

// Orchestrator runs single-index and all-index analyses. One instance is
// shared by the whole process.
type Orchestrator struct {
	provider   imagery.Provider
	renderer   *Renderer
	reducer    *Reducer
	windowDays int
	workers    int
}

func New(p imagery.Provider, cfg Config) *Orchestrator {
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	workers := cfg.Workers
	if workers < index.Count() {
		workers = index.Count()
	}
	return &Orchestrator{
		provider:   p,
		renderer:   NewRenderer(p),
		reducer:    NewReducer(p),
		windowDays: windowDays,
		workers:    workers,
	}
}

// One analyzes a single index. Unlike the batch flow, any unit failure fails
// the whole call.
func (o *Orchestrator) One(ctx context.Context, geom Geometry, indexID string) (Result, error) {
	def, err := index.Lookup(indexID)
	if err != nil {
		return Result{}, err
	}
	if err := geom.Validate(); err != nil {
		return Result{}, err
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("single").Inc()

	scene, err := o.selectScene(ctx, geom)
	if err != nil {
		return Result{}, err
	}
	return o.runUnit(context.WithoutCancel(ctx), geom, def, scene)
}

// All analyzes every registered index concurrently with per-index failure
// isolation: a failed unit becomes the Error sentinel with a nil tile URL,
// and the batch itself still succeeds. The batch can only fail before
// fan-out, on geometry validation or scene selection.
func (o *Orchestrator) All(ctx context.Context, geom Geometry) (*Batch, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("batch").Inc()

	scene, err := o.selectScene(ctx, geom)
	if err != nil {
		return nil, err
	}

	defs := index.All()
	results := make([]Result, len(defs))

	// Units are detached from the request context: a disconnecting client
	// does not cancel in-flight provider calls. They are bounded only by
	// the provider client's timeout.
	unitCtx := context.WithoutCancel(ctx)

	pool := workerpool.New(o.workers)
	for i, def := range defs {
		pool.Submit(func() {
			res, err := o.runUnit(unitCtx, geom, def, scene)
			if err != nil {
				slog.Error("Index unit failed", "index", def.ID, "error", err)
				metrics.IndexUnitErrorsTotal.WithLabelValues(def.ID).Inc()
				results[i] = Result{Index: def.ID, Value: ErrorValue()}
				return
			}
			results[i] = res
		})
	}
	pool.StopWait()

	return &Batch{results: results}, nil
}

// runUnit executes one per-index unit: build the raster locally, then render
// and reduce concurrently. Either remote failure fails the unit.
func (o *Orchestrator) runUnit(ctx context.Context, geom Geometry, def index.Definition, scene imagery.Scene) (Result, error) {
	raster := scene.Raster(def.Expr)

	var (
		tileURL string
		value   Value
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := o.renderer.RenderTiles(gctx, def, raster)
		if err != nil {
			return err
		}
		tileURL = url
		return nil
	})
	g.Go(func() error {
		v, err := o.reducer.ReduceRegion(gctx, def, raster, geom)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Index: def.ID, TileURL: &tileURL, Value: value}, nil
}

// selectScene resolves the shared scene for a request. The policy is
// index-independent; all units of the request reuse the result.
func (o *Orchestrator) selectScene(ctx context.Context, geom Geometry) (imagery.Scene, error) {
	window := imagery.WindowEndingToday(o.windowDays)
	scene, err := o.provider.SelectScene(ctx, geom.Bounds(), window)
	if err != nil {
		return imagery.Scene{}, fmt.Errorf("scene selection failed: %w", err)
	}
	slog.Debug("Scene selected", "scene", scene.ID, "date", scene.Date, "cloudCover", scene.CloudCover)
	return scene, nil
}
