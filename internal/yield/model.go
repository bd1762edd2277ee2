package yield

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/metrics"
)

// Impact classifies one index's normalized value.
type Impact string

const (
	VeryPositive Impact = "VeryPositive"
	Positive     Impact = "Positive"
	Neutral      Impact = "Neutral"
	Concerning   Impact = "Concerning"
	Critical     Impact = "Critical"
)

// Health classifies the weighted score.
type Health string

const (
	Good    Health = "Good"
	Average Health = "Average"
	Poor    Health = "Poor"
)

// maxYieldMultiplier is a fixed model constant: a perfect score triples the
// base yield.
const maxYieldMultiplier = 2.0

// Assessment is one index's contribution to a report. Value is the raw input
// value; Impact is classified on the normalized value.
type Assessment struct {
	Value  float64 `json:"value"`
	Impact Impact  `json:"impact"`
}

// AssessmentSet maps index ids to assessments. It marshals with keys in
// registry order, like batch results, so clients render both the same way.
type AssessmentSet map[string]Assessment

func (s AssessmentSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, id := range index.IDs() {
		a, ok := s[id]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is the outcome of one yield estimation. Reports are built fresh per
// request and never persisted.
type Report struct {
	CropType        string        `json:"cropType"`
	EstimatedYield  float64       `json:"estimatedYield"`
	Units           string        `json:"units"`
	WeightedScore   float64       `json:"weightedScore"`
	HealthStatus    Health        `json:"healthStatus"`
	Indices         AssessmentSet `json:"indices"`
	Recommendations []string      `json:"recommendations"`
}

// Model scores index values against a crop profile table.
type Model struct {
	profiles []Profile
	byCrop   map[string]int
}

// NewModel returns a model over the built-in profile table.
func NewModel() *Model {
	m := &Model{byCrop: make(map[string]int)}
	for _, p := range builtinProfiles {
		m.add(p)
	}
	return m
}

func (m *Model) add(p Profile) {
	if i, ok := m.byCrop[p.Crop]; ok {
		m.profiles[i] = p
		return
	}
	m.byCrop[p.Crop] = len(m.profiles)
	m.profiles = append(m.profiles, p)
}

// Profiles returns the profile table in registration order.
func (m *Model) Profiles() []Profile {
	return m.profiles
}

// Resolve returns the profile for the crop type, falling back to the default
// profile for unknown types. Matching is case-insensitive and alias-aware.
func (m *Model) Resolve(crop string) Profile {
	if i, ok := m.byCrop[normalizeCrop(crop)]; ok {
		return m.profiles[i]
	}
	return m.profiles[0]
}

// normalize maps an index value into 0..1 assuming a native range of -1..1.
// GCI and RVI exceed that range in practice; the model intentionally treats
// them the same as the others.
func normalize(v float64) float64 {
	return (v + 1) / 2
}

func classifyImpact(normalized float64) Impact {
	switch {
	case normalized > 0.7:
		return VeryPositive
	case normalized > 0.5:
		return Positive
	case normalized > 0.3:
		return Neutral
	case normalized > 0.1:
		return Concerning
	default:
		return Critical
	}
}

func classifyHealth(weightedScore float64) Health {
	switch {
	case weightedScore > 0.7:
		return Good
	case weightedScore > 0.4:
		return Average
	default:
		return Poor
	}
}

// Estimate scores the given index values for the crop type. Missing indices
// default to a raw value of 0.
func (m *Model) Estimate(crop string, values map[string]float64) *Report {
	profile := m.Resolve(crop)

	indices := make(AssessmentSet, index.Count())
	score := 0.0
	for _, id := range index.IDs() {
		raw := values[id]
		n := normalize(raw)
		score += n * profile.Weights[id]
		indices[id] = Assessment{Value: raw, Impact: classifyImpact(n)}
	}

	estimated := round2(profile.BaseYield * (1 + score*maxYieldMultiplier))
	health := classifyHealth(score)
	metrics.YieldReportsTotal.WithLabelValues(string(health)).Inc()

	return &Report{
		CropType:        profile.Crop,
		EstimatedYield:  estimated,
		Units:           Units,
		WeightedScore:   round4(score),
		HealthStatus:    health,
		Indices:         indices,
		Recommendations: m.recommend(profile, values),
	}
}

// recommend evaluates the fixed rule list against raw index values, general
// rules first, then the crop-specific rule. Rule order is the output order.
func (m *Model) recommend(profile Profile, values map[string]float64) []string {
	var recs []string
	if values["NDVI"] < 0.3 {
		recs = append(recs, "Low vegetation density detected. Consider soil testing, fertilization, and a pest inspection.")
	}
	if values["NDWI"] < -0.3 {
		recs = append(recs, "Water stress detected. Increase irrigation frequency or check the irrigation system.")
	}
	if values["SAVI"] < 0.2 {
		recs = append(recs, "Weak soil-adjusted vegetation signal. Apply organic soil amendments and review tillage practices.")
	}
	if values["GCI"] < 1.5 {
		recs = append(recs, "Low chlorophyll levels. Apply nitrogen-rich fertilizer to support canopy development.")
	}
	switch profile.Crop {
	case "wheat":
		if values["NDMI"] < -0.1 {
			recs = append(recs, "Wheat moisture deficit detected. Schedule supplemental irrigation before grain fill.")
		}
	case "corn":
		if values["GCI"] < 2.0 {
			recs = append(recs, "Corn nitrogen demand unmet. Consider a side-dress nitrogen application.")
		}
	case "rice":
		if values["NDWI"] < 0.1 {
			recs = append(recs, "Paddy water level below target. Restore standing water for optimal rice growth.")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Crop indicators for %s are within healthy ranges. Maintain the current management program.", profile.Crop))
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
