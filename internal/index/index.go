// Package index holds the registry of supported spectral indices. The
// registry is a static data table: adding an index means adding a row, not a
// branch.
package index

import "fmt"

// Band is an abstract spectral band slot. The imagery provider maps slots to
// the concrete bands of the selected scene; definitions here never reference
// physical band names.
type Band string

const (
	Blue  Band = "BLUE"
	Green Band = "GREEN"
	Red   Band = "RED"
	NIR   Band = "NIR"
	SWIR1 Band = "SWIR1"
	SWIR2 Band = "SWIR2"
)

// Expression is a band-math formula over abstract band slots, plus the slots
// it references.
type Expression struct {
	Formula string `json:"formula"`
	Bands   []Band `json:"bands"`
}

// Visualization holds the render parameters passed verbatim to the tile
// renderer.
type Visualization struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Palette []string `json:"palette"`
}

// Range documents the physically plausible value range of an index. It is
// informational only; reduced values are reported as produced.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Definition describes one spectral index.
type Definition struct {
	ID             string        `json:"id"`
	Description    string        `json:"description"`
	Expr           Expression    `json:"expression"`
	Vis            Visualization `json:"visualization"`
	PlausibleRange Range         `json:"plausibleRange"`
}

// UnknownIndexError is returned by Lookup for ids not present in the
// registry.
type UnknownIndexError struct {
	ID string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("unknown index %q", e.ID)
}
