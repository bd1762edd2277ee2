package analysis

import (
	"context"

	"github.com/cropsight/cropsight/internal/imagery"
	"github.com/cropsight/cropsight/internal/index"
)

// Reducer computes the regional mean of a raster. The reducer returns raw
// tri-state values; 4-decimal formatting happens in the Value constructor.
type Reducer struct {
	provider imagery.Provider
}

func NewReducer(p imagery.Provider) *Reducer {
	return &Reducer{provider: p}
}

func (r *Reducer) ReduceRegion(ctx context.Context, def index.Definition, raster imagery.Raster, geom Geometry) (Value, error) {
	value, ok, err := r.provider.Reduce(ctx, raster, geom.Region())
	if err != nil {
		return Value{}, &ReduceError{Index: def.ID, Cause: err}
	}
	if !ok {
		return NAValue(), nil
	}
	return NumberValue(value), nil
}
