package yield

import "github.com/cropsight/cropsight/internal/index"

// CropOption is one ranked entry in a crop recommendation.
type CropOption struct {
	Crop           string  `json:"crop"`
	PredictedYield float64 `json:"predictedYield"`
}

// Recommendation ranks every profile in the table by predicted yield for the
// given index values.
type Recommendation struct {
	RecommendedCrop string       `json:"recommendedCrop"`
	PredictedYield  float64      `json:"predictedYield"`
	AllOptions      []CropOption `json:"allOptions"`
	Units           string       `json:"units"`
}

// Recommend scores the index values against every profile and returns the
// crop with the highest predicted yield. Ties keep the earlier table entry.
func (m *Model) Recommend(values map[string]float64) *Recommendation {
	options := make([]CropOption, 0, len(m.profiles))
	best := 0
	for i, p := range m.profiles {
		score := 0.0
		for _, id := range index.IDs() {
			score += normalize(values[id]) * p.Weights[id]
		}
		predicted := round2(p.BaseYield * (1 + score*maxYieldMultiplier))
		options = append(options, CropOption{Crop: p.Crop, PredictedYield: predicted})
		if predicted > options[best].PredictedYield {
			best = i
		}
	}
	return &Recommendation{
		RecommendedCrop: options[best].Crop,
		PredictedYield:  options[best].PredictedYield,
		AllOptions:      options,
		Units:           Units,
	}
}
