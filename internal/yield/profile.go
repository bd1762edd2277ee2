// Package yield turns reduced index values into a crop yield estimate, a
// health classification, and management recommendations. The scoring model
// is deterministic: crop-specific weight tables over normalized index
// values, no trained artifacts.
package yield

import (
	"fmt"
	"math"
	"strings"

	"github.com/cropsight/cropsight/internal/index"
)

const (
	// Units reported with every yield figure.
	Units = "tons/hectare"

	weightSumTolerance = 1e-9
)

// Profile holds a crop's base yield and its per-index weight table. Weights
// across all ten indices sum to 1.0.
type Profile struct {
	Crop      string
	BaseYield float64
	Weights   map[string]float64
}

// The built-in table. Wheat doubles as the fallback for unknown crop types,
// so its entry must stay first.
var builtinProfiles = []Profile{
	{
		Crop:      "wheat",
		BaseYield: 5.0,
		Weights: map[string]float64{
			"NDVI": 0.35, "EVI": 0.20, "SAVI": 0.15, "GNDVI": 0.10,
			"NDWI": 0.05, "GCI": 0.05,
			"NBR": 0.025, "NDMI": 0.025, "NDSI": 0.025, "RVI": 0.025,
		},
	},
	{
		Crop:      "corn",
		BaseYield: 9.5,
		Weights: map[string]float64{
			"NDVI": 0.30, "EVI": 0.25, "SAVI": 0.10, "GNDVI": 0.15,
			"NDWI": 0.05, "GCI": 0.10,
			"NBR": 0.0125, "NDMI": 0.0125, "NDSI": 0.0125, "RVI": 0.0125,
		},
	},
	{
		Crop:      "rice",
		BaseYield: 6.5,
		Weights: map[string]float64{
			"NDVI": 0.30, "EVI": 0.15, "SAVI": 0.10, "GNDVI": 0.10,
			"NDWI": 0.20, "GCI": 0.05,
			"NBR": 0.025, "NDMI": 0.05, "NDSI": 0.0125, "RVI": 0.0125,
		},
	},
	{
		Crop:      "barley",
		BaseYield: 4.5,
		Weights: map[string]float64{
			"NDVI": 0.30, "EVI": 0.20, "SAVI": 0.15, "GNDVI": 0.10,
			"NDWI": 0.10, "GCI": 0.05,
			"NBR": 0.025, "NDMI": 0.05, "NDSI": 0.0125, "RVI": 0.0125,
		},
	},
	{
		Crop:      "millet",
		BaseYield: 3.0,
		Weights: map[string]float64{
			"NDVI": 0.30, "EVI": 0.15, "SAVI": 0.20, "GNDVI": 0.10,
			"NDWI": 0.05, "GCI": 0.10,
			"NBR": 0.025, "NDMI": 0.025, "NDSI": 0.025, "RVI": 0.025,
		},
	},
}

// cropAliases maps alternate crop names onto table entries.
var cropAliases = map[string]string{
	"maize": "corn",
}

// Validate checks a profile for use in the model: a positive base yield and
// weights over known indices summing to 1.0.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Crop) == "" {
		return fmt.Errorf("profile has no crop name")
	}
	if p.BaseYield <= 0 {
		return fmt.Errorf("profile %q: base yield must be positive, got %v", p.Crop, p.BaseYield)
	}
	sum := 0.0
	for _, id := range index.IDs() {
		w, ok := p.Weights[id]
		if !ok {
			return fmt.Errorf("profile %q: missing weight for %s", p.Crop, id)
		}
		if w < 0 {
			return fmt.Errorf("profile %q: negative weight for %s", p.Crop, id)
		}
		sum += w
	}
	for id := range p.Weights {
		if _, err := index.Lookup(id); err != nil {
			return fmt.Errorf("profile %q: %w", p.Crop, err)
		}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("profile %q: weights sum to %.6f, want 1.0", p.Crop, sum)
	}
	return nil
}

func normalizeCrop(crop string) string {
	c := strings.ToLower(strings.TrimSpace(crop))
	if canonical, ok := cropAliases[c]; ok {
		return canonical
	}
	return c
}
