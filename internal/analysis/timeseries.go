package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/montanaflynn/stats"

	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/metrics"
)

// SeriesPoint is one dated reduction in an index time series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesSummary aggregates a series.
type SeriesSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// Series holds the per-scene reductions of one index over a window, oldest
// first.
type Series struct {
	Index   string        `json:"index"`
	Points  []SeriesPoint `json:"points"`
	Summary SeriesSummary `json:"summary"`
}

// Series reduces the index over every catalogued scene in the window. Scene
// reductions fan out on the worker pool; a failed or empty reduction drops
// that scene from the series without failing the call. An empty catalog
// yields an empty series.
func (o *Orchestrator) Series(ctx context.Context, geom Geometry, indexID string, days int) (*Series, error) {
	def, err := index.Lookup(indexID)
	if err != nil {
		return nil, err
	}
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = o.windowDays
	}
	metrics.AnalysisRequestsTotal.WithLabelValues("series").Inc()

	window := imagery.WindowEndingToday(days)
	scenes, err := o.provider.ListScenes(ctx, geom.Bounds(), window)
	if err != nil {
		return nil, fmt.Errorf("scene listing failed: %w", err)
	}

	type sample struct {
		date  time.Time
		value float64
		ok    bool
	}
	samples := make([]sample, len(scenes))
	unitCtx := context.WithoutCancel(ctx)

	pool := workerpool.New(o.workers)
	for i, scene := range scenes {
		pool.Submit(func() {
			v, ok, err := o.provider.Reduce(unitCtx, scene.Raster(def.Expr), geom.Region())
			if err != nil {
				slog.Warn("Series reduction failed", "index", def.ID, "scene", scene.ID, "error", err)
				return
			}
			if !ok {
				return
			}
			samples[i] = sample{date: scene.Date, value: v, ok: true}
		})
	}
	pool.StopWait()

	series := &Series{Index: def.ID, Points: make([]SeriesPoint, 0, len(samples))}
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !s.ok {
			continue
		}
		series.Points = append(series.Points, SeriesPoint{Date: s.date, Value: round4(s.value)})
		values = append(values, s.value)
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	if len(values) > 0 {
		series.Summary = summarize(values)
	}
	return series, nil
}

func summarize(values []float64) SeriesSummary {
	mean, _ := stats.Mean(values)
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	sd, _ := stats.StandardDeviation(values)
	return SeriesSummary{
		Count:  len(values),
		Mean:   round4(mean),
		Min:    round4(lo),
		Max:    round4(hi),
		StdDev: round4(sd),
	}
}
