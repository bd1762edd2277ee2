package yield

import (
	"strings"
	"testing"

	"github.com/cropsight/cropsight/internal/index"
)

func uniformValues(v float64) map[string]float64 {
	values := make(map[string]float64, index.Count())
	for _, id := range index.IDs() {
		values[id] = v
	}
	return values
}

func TestRecommendRanksByYield(t *testing.T) {
	// With a uniform input every profile scores the same, so the highest
	// base yield wins: corn at 9.5 t/ha.
	rec := NewModel().Recommend(uniformValues(0.5))

	if rec.RecommendedCrop != "corn" {
		t.Errorf("expected corn, got %s", rec.RecommendedCrop)
	}
	if rec.PredictedYield != 23.75 {
		t.Errorf("expected 23.75, got %v", rec.PredictedYield)
	}
	if rec.Units != "tons/hectare" {
		t.Errorf("expected tons/hectare, got %s", rec.Units)
	}
	if len(rec.AllOptions) != 5 {
		t.Fatalf("expected 5 options, got %d", len(rec.AllOptions))
	}
	// Options keep table order, not rank order.
	if rec.AllOptions[0].Crop != "wheat" {
		t.Errorf("expected wheat listed first, got %s", rec.AllOptions[0].Crop)
	}
	for _, opt := range rec.AllOptions {
		if opt.PredictedYield <= 0 {
			t.Errorf("%s: non-positive predicted yield %v", opt.Crop, opt.PredictedYield)
		}
	}
}

func TestRecommendTieKeepsTableOrder(t *testing.T) {
	m := NewModel()
	data := csvHeader + "sorghum,9.5,0.30,0.25,0.10,0.15,0.05,0.10,0.0125,0.0125,0.0125,0.0125\n"
	if err := m.LoadProfiles(strings.NewReader(data)); err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}

	// Sorghum duplicates corn's profile, so both predict the same yield;
	// the earlier table entry wins the tie.
	rec := m.Recommend(uniformValues(0.5))
	if rec.RecommendedCrop != "corn" {
		t.Errorf("expected the tie to keep corn, got %s", rec.RecommendedCrop)
	}
	if len(rec.AllOptions) != 6 {
		t.Errorf("expected 6 options, got %d", len(rec.AllOptions))
	}
}
