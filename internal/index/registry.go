package index

// registry lists the ten supported indices in display order. Order matters:
// batch results and listings preserve it.
var registry = []Definition{
	{
		ID:          "NDVI",
		Description: "Normalized Difference Vegetation Index, general canopy vigor",
		Expr:        Expression{Formula: "(NIR - RED) / (NIR + RED)", Bands: []Band{NIR, Red}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"blue", "white", "green"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "SAVI",
		Description: "Soil Adjusted Vegetation Index, vigor with sparse canopy (L=0.5)",
		Expr:        Expression{Formula: "((NIR - RED) / (NIR + RED + 0.5)) * 1.5", Bands: []Band{NIR, Red}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#654321", "#ffffcc", "#006400"}},
		PlausibleRange: Range{Lo: -1.5, Hi: 1.5},
	},
	{
		ID:          "EVI",
		Description: "Enhanced Vegetation Index, vigor with atmospheric correction",
		Expr:        Expression{Formula: "2.5 * (NIR - RED) / (NIR + 6 * RED - 7.5 * BLUE + 1)", Bands: []Band{NIR, Red, Blue}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#a50026", "#fdae61", "#ffffbf", "#a6d96a", "#006837"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "GNDVI",
		Description: "Green Normalized Difference Vegetation Index, chlorophyll sensitivity",
		Expr:        Expression{Formula: "(NIR - GREEN) / (NIR + GREEN)", Bands: []Band{NIR, Green}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#ffffff", "#c7e9c0", "#74c476", "#238b45", "#00441b"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "NDWI",
		Description: "Normalized Difference Water Index, surface water and canopy moisture",
		Expr:        Expression{Formula: "(GREEN - NIR) / (GREEN + NIR)", Bands: []Band{Green, NIR}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#8c510a", "#f6e8c3", "#c7eae5", "#01665e"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "GCI",
		Description: "Green Chlorophyll Index, leaf chlorophyll content",
		Expr:        Expression{Formula: "NIR / GREEN - 1", Bands: []Band{NIR, Green}},
		Vis:         Visualization{Min: 0, Max: 10, Palette: []string{"#ffffe5", "#addd8e", "#238443"}},
		PlausibleRange: Range{Lo: 0, Hi: 10},
	},
	{
		ID:          "NBR",
		Description: "Normalized Burn Ratio, burn severity and bare ground",
		Expr:        Expression{Formula: "(NIR - SWIR2) / (NIR + SWIR2)", Bands: []Band{NIR, SWIR2}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#67001f", "#f7f7f7", "#053061"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "NDMI",
		Description: "Normalized Difference Moisture Index, vegetation water content",
		Expr:        Expression{Formula: "(NIR - SWIR1) / (NIR + SWIR1)", Bands: []Band{NIR, SWIR1}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#d7191c", "#fdae61", "#ffffbf", "#abd9e9", "#2c7bb6"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "NDSI",
		Description: "Normalized Difference Snow Index, snow cover",
		Expr:        Expression{Formula: "(GREEN - SWIR1) / (GREEN + SWIR1)", Bands: []Band{Green, SWIR1}},
		Vis:         Visualization{Min: -1, Max: 1, Palette: []string{"#8c510a", "#f5f5f5", "#2166ac"}},
		PlausibleRange: Range{Lo: -1, Hi: 1},
	},
	{
		ID:          "RVI",
		Description: "Ratio Vegetation Index, simple biomass ratio",
		Expr:        Expression{Formula: "NIR / RED", Bands: []Band{NIR, Red}},
		Vis:         Visualization{Min: 0, Max: 10, Palette: []string{"#fee08b", "#a6d96a", "#1a9850"}},
		PlausibleRange: Range{Lo: 0, Hi: 10},
	},
}

var byID = make(map[string]int, len(registry))

func init() {
	for i, def := range registry {
		byID[def.ID] = i
	}
}

// Lookup returns the definition for the given id. Ids are matched exactly;
// callers normalize case at the boundary.
func Lookup(id string) (Definition, error) {
	i, ok := byID[id]
	if !ok {
		return Definition{}, &UnknownIndexError{ID: id}
	}
	return registry[i], nil
}

// All returns the definitions in registry order. The returned slice is shared;
// callers must not modify it.
func All() []Definition {
	return registry
}

// IDs returns the index ids in registry order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, def := range registry {
		ids[i] = def.ID
	}
	return ids
}

// Count is the number of registered indices.
func Count() int {
	return len(registry)
}
