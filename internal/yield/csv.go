package yield

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"
)

// profileRow is the calibration file layout: one row per crop, one weight
// column per index.
type profileRow struct {
	Crop      string  `csv:"crop"`
	BaseYield float64 `csv:"base_yield"`
	NDVI      float64 `csv:"ndvi"`
	SAVI      float64 `csv:"savi"`
	EVI       float64 `csv:"evi"`
	GNDVI     float64 `csv:"gndvi"`
	NDWI      float64 `csv:"ndwi"`
	GCI       float64 `csv:"gci"`
	NBR       float64 `csv:"nbr"`
	NDMI      float64 `csv:"ndmi"`
	NDSI      float64 `csv:"ndsi"`
	RVI       float64 `csv:"rvi"`
}

func (r profileRow) profile() Profile {
	return Profile{
		Crop:      normalizeCrop(r.Crop),
		BaseYield: r.BaseYield,
		Weights: map[string]float64{
			"NDVI": r.NDVI, "SAVI": r.SAVI, "EVI": r.EVI, "GNDVI": r.GNDVI,
			"NDWI": r.NDWI, "GCI": r.GCI, "NBR": r.NBR, "NDMI": r.NDMI,
			"NDSI": r.NDSI, "RVI": r.RVI,
		},
	}
}

// LoadProfiles reads crop profiles from calibration CSV data. Rows for known
// crops replace the built-in entry; new crops extend the table. Any invalid
// row rejects the whole file.
func (m *Model) LoadProfiles(r io.Reader) error {
	var rows []profileRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return fmt.Errorf("error parsing profile csv: %w", err)
	}
	for _, row := range rows {
		p := row.profile()
		if err := p.Validate(); err != nil {
			return err
		}
		m.add(p)
	}
	return nil
}

// LoadProfilesFile loads crop profiles from the file at path.
func (m *Model) LoadProfilesFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening profile csv: %w", err)
	}
	defer file.Close()

	if err := m.LoadProfiles(file); err != nil {
		return err
	}
	slog.Info("crop profiles loaded", "path", path, "profiles", len(m.profiles))
	return nil
}
