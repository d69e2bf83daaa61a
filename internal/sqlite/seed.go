package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/decors/pkg/types"
)

// SampleDecors returns the demo records inserted by Seed.
func SampleDecors() []types.DecorValues {
	return []types.DecorValues{
		{
			Name:        types.Ptr("Glass Footed Cylinder Vase"),
			Description: types.Ptr("Diameter 9cm, perfect for small bouquets or as candle holder"),
			Material:    types.Ptr(types.MaterialGlass),
			Height:      types.Ptr(30),
			Price:       types.Ptr(decimal.RequireFromString("8.5")),
			Quantity:    types.Ptr(12),
		},
	}
}

// Seed inserts SampleDecors through the validated insert path and returns
// their ids.
func (b *Backend) Seed(ctx context.Context) ([]int64, error) {
	samples := SampleDecors()
	ids := make([]int64, 0, len(samples))
	for _, v := range samples {
		id, err := b.Insert(ctx, v)
		if err != nil {
			return ids, fmt.Errorf("seeding %q: %w", *v.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
