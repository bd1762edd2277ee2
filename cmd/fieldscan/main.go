// fieldscan runs the full analysis stack against one field polygon from the
// command line: per-index analysis, yield estimation, optional time series,
// CSV export, and a heatmap PNG. It shares the server's config and provider
// client but carries no HTTP layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/schollz/progressbar/v3"

	"github.com/cropsight/cropsight/internal/analysis"
	"github.com/cropsight/cropsight/internal/config"
	"github.com/cropsight/cropsight/internal/geo"
	"github.com/cropsight/cropsight/internal/heatmap"
	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/logging"
	"github.com/cropsight/cropsight/internal/yield"
)

type indexRow struct {
	Index   string `csv:"index"`
	Value   string `csv:"value"`
	Impact  string `csv:"impact"`
	TileURL string `csv:"tile_url"`
}

func main() {
	geojsonPath := flag.String("geojson", "", "GeoJSON file with the field polygon (required)")
	crop := flag.String("crop", "wheat", "crop type for yield estimation")
	indexID := flag.String("index", "", "analyze a single index and print its time series")
	days := flag.Int("days", 90, "time-series lookback window in days")
	outPath := flag.String("out", "", "write per-index results as CSV")
	pngPath := flag.String("png", "", "write the field heatmap as PNG")
	flag.Parse()

	if *geojsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, "text")

	ring, err := loadRing(*geojsonPath)
	if err != nil {
		fail("reading %s: %v", *geojsonPath, err)
	}
	geom := analysis.PolygonGeometry(ring)

	client := imagery.NewClient(imagery.ClientConfig{
		BaseURL:      cfg.Imagery.BaseURL,
		TokenURL:     cfg.Imagery.TokenURL,
		ClientID:     cfg.Imagery.ClientID,
		ClientSecret: cfg.Imagery.ClientSecret,
		Timeout:      cfg.Imagery.Timeout,
		Selection:    cfg.Scene.Selection,
	})
	orchestrator := analysis.New(client, analysis.Config{
		WindowDays: cfg.Analysis.WindowDays,
		Workers:    cfg.Analysis.Workers,
	})

	ctx := context.Background()

	centroid := geo.Centroid(ring)
	fmt.Printf("Field: %d vertices, %.2f ha, centroid (%.5f, %.5f)\n",
		len(geo.Vertices(ring)), geo.AreaHectares(ring), centroid[1], centroid[0])

	if *indexID != "" {
		runSeries(ctx, orchestrator, geom, *indexID, *days)
		return
	}

	results := runBatch(ctx, orchestrator, geom)

	model := yield.NewModel()
	if cfg.Yield.ProfilesPath != "" {
		if err := model.LoadProfilesFile(cfg.Yield.ProfilesPath); err != nil {
			fail("loading yield profiles: %v", err)
		}
	}

	values := make(map[string]float64, len(results))
	for _, r := range results {
		if v, ok := r.Value.Number(); ok {
			values[r.Index] = v
		}
	}
	report := model.Estimate(*crop, values)
	printReport(results, report)

	if *outPath != "" {
		if err := writeCSV(*outPath, results, report); err != nil {
			fail("writing %s: %v", *outPath, err)
		}
		fmt.Printf("Per-index results written to %s\n", *outPath)
	}

	if *pngPath != "" {
		if err := writePNG(*pngPath, ring, report.WeightedScore); err != nil {
			fail("writing %s: %v", *pngPath, err)
		}
		fmt.Printf("Heatmap written to %s\n", *pngPath)
	}
}

// loadRing reads the first polygon feature from a GeoJSON file and closes
// its outer ring.
func loadRing(path string) (orb.Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing feature collection: %w", err)
	}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) == 0 {
				continue
			}
			ring := geo.CloseRing(g[0])
			if err := geo.ValidateRing(ring); err != nil {
				return nil, err
			}
			return ring, nil
		case orb.MultiPolygon:
			if len(g) == 0 || len(g[0]) == 0 {
				continue
			}
			ring := geo.CloseRing(g[0][0])
			if err := geo.ValidateRing(ring); err != nil {
				return nil, err
			}
			return ring, nil
		}
	}
	return nil, fmt.Errorf("no polygon feature found")
}

// runBatch analyzes every index one unit at a time with a progress bar.
// Failed units are reported and kept as Error entries; they never abort the
// scan.
func runBatch(ctx context.Context, o *analysis.Orchestrator, geom analysis.Geometry) []analysis.Result {
	defs := index.All()
	bar := progressbar.Default(int64(len(defs)), "Analyzing indices")

	results := make([]analysis.Result, 0, len(defs))
	var failures []string
	for _, def := range defs {
		res, err := o.One(ctx, geom, def.ID)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", def.ID, err))
			res = analysis.Result{Index: def.ID, Value: analysis.ErrorValue()}
		}
		results = append(results, res)
		_ = bar.Add(1)
	}
	for _, f := range failures {
		color.Yellow("warning: %s", f)
	}
	return results
}

func runSeries(ctx context.Context, o *analysis.Orchestrator, geom analysis.Geometry, indexID string, days int) {
	series, err := o.Series(ctx, geom, indexID, days)
	if err != nil {
		fail("time series for %s: %v", indexID, err)
	}
	color.Cyan("%s over the last %d days (%d scenes)", series.Index, days, series.Summary.Count)
	for _, p := range series.Points {
		fmt.Printf("  %s  %+.4f\n", p.Date.Format("2006-01-02"), p.Value)
	}
	if series.Summary.Count > 0 {
		fmt.Printf("mean %.4f  min %.4f  max %.4f  stddev %.4f\n",
			series.Summary.Mean, series.Summary.Min, series.Summary.Max, series.Summary.StdDev)
	}
}

func printReport(results []analysis.Result, report *yield.Report) {
	fmt.Println()
	for _, r := range results {
		impact := ""
		if a, ok := report.Indices[r.Index]; ok && !r.Value.IsError() && !r.Value.IsNA() {
			impact = string(a.Impact)
		}
		fmt.Printf("  %-6s %10s  %s\n", r.Index, r.Value, impact)
	}
	fmt.Println()

	statusColor := color.New(color.FgGreen)
	switch report.HealthStatus {
	case yield.Average:
		statusColor = color.New(color.FgYellow)
	case yield.Poor:
		statusColor = color.New(color.FgRed)
	}
	fmt.Printf("Crop: %s\n", report.CropType)
	statusColor.Printf("Health: %s (score %.4f)\n", report.HealthStatus, report.WeightedScore)
	fmt.Printf("Estimated yield: %.2f %s\n", report.EstimatedYield, report.Units)
	for _, rec := range report.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

func writeCSV(path string, results []analysis.Result, report *yield.Report) error {
	rows := make([]indexRow, 0, len(results))
	for _, r := range results {
		row := indexRow{Index: r.Index, Value: r.Value.String()}
		if a, ok := report.Indices[r.Index]; ok && !r.Value.IsError() && !r.Value.IsNA() {
			row.Impact = string(a.Impact)
		}
		if r.TileURL != nil {
			row.TileURL = *r.TileURL
		}
		rows = append(rows, row)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.Marshal(&rows, file)
}

func writePNG(path string, ring orb.Ring, weightedScore float64) error {
	m, err := heatmap.Generate(ring, weightedScore)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return heatmap.RenderPNG(file, ring, m, 0)
}

func fail(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}
