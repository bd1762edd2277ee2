package analysis

import (
	"context"

	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
)

// Renderer turns a raster into a slippy-map tile URL template using the
// index's registered visualization, passed to the provider verbatim.
type Renderer struct {
	provider imagery.Provider
}

func NewRenderer(p imagery.Provider) *Renderer {
	return &Renderer{provider: p}
}

func (r *Renderer) RenderTiles(ctx context.Context, def index.Definition, raster imagery.Raster) (string, error) {
	url, err := r.provider.Render(ctx, raster, def.Vis)
	if err != nil {
		return "", &RenderError{Index: def.ID, Cause: err}
	}
	return url, nil
}
