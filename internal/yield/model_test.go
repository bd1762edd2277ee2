package yield

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cropsight/cropsight/internal/index"
)

// The ten-index value set used throughout: moderately healthy vegetation.
func sampleValues() map[string]float64 {
	return map[string]float64{
		"NDVI": 0.6, "SAVI": 0.5, "EVI": 0.4, "GNDVI": 0.3,
		"NDWI": 0.1, "GCI": 0.2, "NBR": 0.1, "NDMI": 0.2,
		"NDSI": 0.0, "RVI": 0.3,
	}
}

func TestEstimateWorkedExample(t *testing.T) {
	report := NewModel().Estimate("wheat", sampleValues())

	if report.CropType != "wheat" {
		t.Errorf("expected wheat, got %s", report.CropType)
	}
	if report.WeightedScore != 0.7125 {
		t.Errorf("expected weighted score 0.7125, got %v", report.WeightedScore)
	}
	if report.HealthStatus != Good {
		t.Errorf("expected Good, got %s", report.HealthStatus)
	}
	if report.EstimatedYield != 12.13 {
		t.Errorf("expected estimated yield 12.13, got %v", report.EstimatedYield)
	}
	if report.Units != "tons/hectare" {
		t.Errorf("expected tons/hectare, got %s", report.Units)
	}
	if len(report.Indices) != index.Count() {
		t.Errorf("expected %d index assessments, got %d", index.Count(), len(report.Indices))
	}

	impacts := map[string]Impact{
		"NDVI": VeryPositive, // 0.6 -> 0.80
		"NDWI": Positive,     // 0.1 -> 0.55
		"NDSI": Neutral,      // 0.0 -> 0.50
	}
	for id, want := range impacts {
		a := report.Indices[id]
		if a.Impact != want {
			t.Errorf("%s: expected impact %s, got %s", id, want, a.Impact)
		}
	}
	if got := report.Indices["NDVI"].Value; got != 0.6 {
		t.Errorf("expected the raw NDVI value 0.6, got %v", got)
	}

	// Only the chlorophyll rule fires at GCI 0.2.
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", report.Recommendations)
	}
	if !strings.Contains(report.Recommendations[0], "nitrogen") {
		t.Errorf("expected the nitrogen note, got %q", report.Recommendations[0])
	}
}

func TestEstimateMissingIndicesDefault(t *testing.T) {
	report := NewModel().Estimate("wheat", map[string]float64{})

	// Raw 0 normalizes to 0.5, so an empty input scores exactly 0.5.
	if report.WeightedScore != 0.5 {
		t.Errorf("expected weighted score 0.5, got %v", report.WeightedScore)
	}
	if report.HealthStatus != Average {
		t.Errorf("expected Average, got %s", report.HealthStatus)
	}
	if report.EstimatedYield != 10.0 {
		t.Errorf("expected estimated yield 10.0, got %v", report.EstimatedYield)
	}
	for id, a := range report.Indices {
		if a.Value != 0 {
			t.Errorf("%s: expected defaulted raw value 0, got %v", id, a.Value)
		}
		if a.Impact != Neutral {
			t.Errorf("%s: expected Neutral, got %s", id, a.Impact)
		}
	}
}

func TestReportIndicesMarshalInRegistryOrder(t *testing.T) {
	report := NewModel().Estimate("wheat", sampleValues())

	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshaling report: %v", err)
	}
	var resp struct {
		Indices json.RawMessage `json:"indices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decoding report: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Indices))
	if _, err := dec.Token(); err != nil { // opening brace
		t.Fatalf("decoding indices: %v", err)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			t.Fatalf("decoding indices: %v", err)
		}
		keys = append(keys, tok.(string))
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			t.Fatalf("decoding assessment: %v", err)
		}
	}
	want := index.IDs()
	if len(keys) != len(want) {
		t.Fatalf("expected %d index keys, got %d: %v", len(want), len(keys), keys)
	}
	for i, id := range want {
		if keys[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, keys[i])
		}
	}
}

func TestEstimateRecommendationOrder(t *testing.T) {
	// Zeros trip the vegetation, soil, and chlorophyll rules in rule order.
	report := NewModel().Estimate("wheat", map[string]float64{})

	if len(report.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %v", report.Recommendations)
	}
	wantOrder := []string{"vegetation", "soil", "nitrogen"}
	for i, word := range wantOrder {
		if !strings.Contains(strings.ToLower(report.Recommendations[i]), word) {
			t.Errorf("recommendation %d: expected the %s note, got %q", i, word, report.Recommendations[i])
		}
	}
}

func TestEstimateUnknownCropFallsBack(t *testing.T) {
	report := NewModel().Estimate("dragonfruit", sampleValues())
	if report.CropType != "wheat" {
		t.Errorf("expected fallback to wheat, got %s", report.CropType)
	}
	if report.EstimatedYield != 12.13 {
		t.Errorf("expected the default profile yield 12.13, got %v", report.EstimatedYield)
	}
}

func TestEstimateCropNameNormalization(t *testing.T) {
	m := NewModel()
	if got := m.Estimate("WHEAT", sampleValues()).CropType; got != "wheat" {
		t.Errorf("expected case-insensitive match, got %s", got)
	}
	if got := m.Estimate("Maize", sampleValues()).CropType; got != "corn" {
		t.Errorf("expected maize to resolve to corn, got %s", got)
	}
	if got := m.Estimate(" rice ", sampleValues()).CropType; got != "rice" {
		t.Errorf("expected trimmed match, got %s", got)
	}
}

func TestNormalizeBounds(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1.0},
		{-1, 0.0},
		{0, 0.5},
	}
	for _, tc := range tests {
		if got := normalize(tc.in); got != tc.want {
			t.Errorf("normalize(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		n    float64
		want Impact
	}{
		{0.71, VeryPositive},
		{0.7, Positive},
		{0.51, Positive},
		{0.5, Neutral},
		{0.31, Neutral},
		{0.3, Concerning},
		{0.11, Concerning},
		{0.1, Critical},
		{0.0, Critical},
	}
	for _, tc := range tests {
		if got := classifyImpact(tc.n); got != tc.want {
			t.Errorf("classifyImpact(%v): expected %s, got %s", tc.n, tc.want, got)
		}
	}
}

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		score float64
		want  Health
	}{
		{0.71, Good},
		{0.7, Average},
		{0.41, Average},
		{0.4, Poor},
		{0.0, Poor},
	}
	for _, tc := range tests {
		if got := classifyHealth(tc.score); got != tc.want {
			t.Errorf("classifyHealth(%v): expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestCropSpecificRecommendations(t *testing.T) {
	t.Run("wheat moisture deficit", func(t *testing.T) {
		values := sampleValues()
		values["NDMI"] = -0.2
		values["GCI"] = 2.5
		recs := NewModel().Estimate("wheat", values).Recommendations
		if len(recs) != 1 || !strings.Contains(recs[0], "Wheat") {
			t.Errorf("expected only the wheat moisture note, got %v", recs)
		}
	})

	t.Run("corn nitrogen demand", func(t *testing.T) {
		values := sampleValues()
		values["GCI"] = 1.8
		recs := NewModel().Estimate("corn", values).Recommendations
		if len(recs) != 1 || !strings.Contains(recs[0], "Corn") {
			t.Errorf("expected only the corn nitrogen note, got %v", recs)
		}
	})

	t.Run("rice paddy water", func(t *testing.T) {
		values := sampleValues()
		values["NDWI"] = 0.05
		values["GCI"] = 2.5
		recs := NewModel().Estimate("rice", values).Recommendations
		if len(recs) != 1 || !strings.Contains(recs[0], "Paddy") {
			t.Errorf("expected only the rice paddy note, got %v", recs)
		}
	})
}

func TestDefaultRecommendation(t *testing.T) {
	values := map[string]float64{
		"NDVI": 0.8, "SAVI": 0.6, "EVI": 0.7, "GNDVI": 0.6,
		"NDWI": 0.2, "GCI": 3.0, "NBR": 0.4, "NDMI": 0.3,
		"NDSI": 0.1, "RVI": 4.0,
	}
	recs := NewModel().Estimate("wheat", values).Recommendations
	if len(recs) != 1 {
		t.Fatalf("expected the single default note, got %v", recs)
	}
	if !strings.Contains(recs[0], "healthy") {
		t.Errorf("expected the good-health note, got %q", recs[0])
	}
}
