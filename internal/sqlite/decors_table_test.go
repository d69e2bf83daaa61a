package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/decors/pkg/types"
)

func byID(id int64) types.Selection {
	return types.Selection{Where: "id = ?", Args: []any{id}}
}

func getDecor(t *testing.T, b *Backend, id int64) *types.Decor {
	t.Helper()
	all := queryAll(t, b, byID(id), types.QueryOptions{})
	require.Len(t, all, 1)
	return all[0]
}

func TestInsert_RoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	values := vase()
	values.Description = types.Ptr("tall")
	values.SupplierName = types.Ptr("Glassworks")
	values.SupplierEmail = types.Ptr("orders@glassworks.example")
	values.Image = types.Ptr([]byte{0x89, 'P', 'N', 'G'})

	id, err := b.Insert(ctx, values)
	require.NoError(t, err)
	assert.Positive(t, id)

	got := getDecor(t, b, id)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Vase", got.Name)
	assert.Equal(t, "tall", got.Description)
	assert.Equal(t, types.MaterialGlass, got.Material)
	assert.Equal(t, 30, got.Height)
	assert.True(t, decimal.RequireFromString("8.5").Equal(got.Price), "price = %s", got.Price)
	assert.Equal(t, 12, got.Quantity)
	assert.Equal(t, "Glassworks", got.SupplierName)
	assert.Equal(t, "orders@glassworks.example", got.SupplierEmail)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.Image)
}

func TestInsert_HeightDefaultsToZero(t *testing.T) {
	b := newTestBackend(t)
	values := vase()
	values.Height = nil

	id, err := b.Insert(context.Background(), values)
	require.NoError(t, err)
	assert.Equal(t, 0, getDecor(t, b, id).Height)
}

func TestInsert_ZeroPriceIsKept(t *testing.T) {
	b := newTestBackend(t)
	values := vase()
	values.Price = types.Ptr(decimal.Zero)

	id, err := b.Insert(context.Background(), values)
	require.NoError(t, err)
	assert.True(t, getDecor(t, b, id).Price.IsZero())
}

func TestInsert_ValidationFailsWithoutWrite(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(v *types.DecorValues)
		wantField string
	}{
		{name: "empty name", mutate: func(v *types.DecorValues) { v.Name = types.Ptr("") }, wantField: types.ColumnName},
		{name: "material out of range", mutate: func(v *types.DecorValues) { v.Material = types.Ptr(types.Material(7)) }, wantField: types.ColumnMaterial},
		{name: "negative height", mutate: func(v *types.DecorValues) { v.Height = types.Ptr(-1) }, wantField: types.ColumnHeight},
		{name: "missing price", mutate: func(v *types.DecorValues) { v.Price = nil }, wantField: types.ColumnPrice},
		{name: "negative quantity", mutate: func(v *types.DecorValues) { v.Quantity = types.Ptr(-1) }, wantField: types.ColumnQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			values := vase()
			tt.mutate(&values)

			_, err := b.Insert(context.Background(), values)
			var ve *types.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, 0, countDecors(t, b))
		})
	}
}

func TestUpdate(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	id, err := b.Insert(ctx, vase())
	require.NoError(t, err)

	n, err := b.Update(ctx, byID(id), types.DecorValues{Quantity: types.Ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got := getDecor(t, b, id)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, "Vase", got.Name, "absent fields are unchanged")
	assert.Equal(t, 30, got.Height)
}

func TestUpdate_EmptyValues(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	_, err := b.Insert(ctx, vase())
	require.NoError(t, err)

	n, err := b.Update(ctx, types.Selection{}, types.DecorValues{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdate_InvalidFieldLeavesRow(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	id, err := b.Insert(ctx, vase())
	require.NoError(t, err)

	_, err = b.Update(ctx, byID(id), types.DecorValues{
		Quantity: types.Ptr(1),
		Material: types.Ptr(types.Material(9)),
	})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 12, getDecor(t, b, id).Quantity)
}

func TestUpdate_NoMatch(t *testing.T) {
	b := newTestBackend(t)
	n, err := b.Update(context.Background(), byID(99), types.DecorValues{Quantity: types.Ptr(1)})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := b.Insert(ctx, vase())
		require.NoError(t, err)
		ids = append(ids, id)
	}

	n, err := b.Delete(ctx, byID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = b.Delete(ctx, byID(ids[0]))
	require.NoError(t, err)
	assert.Zero(t, n, "second delete of the same id")

	n, err = b.Delete(ctx, types.Selection{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 0, countDecors(t, b))
}

func TestQuery_Options(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	for _, p := range []string{"3", "1", "2"} {
		v := vase()
		v.Name = types.Ptr("Vase " + p)
		v.Price = types.Ptr(decimal.RequireFromString(p))
		_, err := b.Insert(ctx, v)
		require.NoError(t, err)
	}

	t.Run("default order is by id", func(t *testing.T) {
		all := queryAll(t, b, types.Selection{}, types.QueryOptions{})
		require.Len(t, all, 3)
		assert.Equal(t, "Vase 3", all[0].Name)
	})

	t.Run("sort descending", func(t *testing.T) {
		all := queryAll(t, b, types.Selection{}, types.QueryOptions{SortOrder: "price desc, name"})
		require.Len(t, all, 3)
		assert.Equal(t, []string{"Vase 3", "Vase 2", "Vase 1"}, names(all))
	})

	t.Run("selection with args", func(t *testing.T) {
		all := queryAll(t, b, types.Selection{Where: "price < ?", Args: []any{2.5}}, types.QueryOptions{SortOrder: "price"})
		assert.Equal(t, []string{"Vase 1", "Vase 2"}, names(all))
	})

	t.Run("limit and offset", func(t *testing.T) {
		all := queryAll(t, b, types.Selection{}, types.QueryOptions{SortOrder: "price", Limit: 1, Offset: 1})
		assert.Equal(t, []string{"Vase 2"}, names(all))

		all = queryAll(t, b, types.Selection{}, types.QueryOptions{SortOrder: "price", Offset: 2})
		assert.Equal(t, []string{"Vase 3"}, names(all))
	})

	t.Run("projection leaves other fields zero", func(t *testing.T) {
		cur, err := b.Query(ctx, types.Selection{}, types.QueryOptions{
			Projection: []string{types.ColumnID, types.ColumnName},
		})
		require.NoError(t, err)
		defer cur.Close()

		assert.Equal(t, []string{types.ColumnID, types.ColumnName}, cur.Columns())
		require.True(t, cur.Next())
		d, err := cur.Decor()
		require.NoError(t, err)
		assert.Equal(t, "Vase 3", d.Name)
		assert.Zero(t, d.Quantity)
		assert.True(t, d.Price.IsZero())

		var id int64
		var name string
		require.NoError(t, cur.Scan(&id, &name))
		assert.Equal(t, d.ID, id)
		assert.Equal(t, "Vase 3", name)
	})

	t.Run("empty result", func(t *testing.T) {
		cur, err := b.Query(ctx, byID(1000), types.QueryOptions{})
		require.NoError(t, err)
		defer cur.Close()
		assert.False(t, cur.Next())
		assert.NoError(t, cur.Err())
	})
}

func TestQuery_InvalidOptions(t *testing.T) {
	b := newTestBackend(t)

	tests := []struct {
		name string
		opts types.QueryOptions
	}{
		{name: "unknown projection column", opts: types.QueryOptions{Projection: []string{"colour"}}},
		{name: "injected projection", opts: types.QueryOptions{Projection: []string{"name; DROP TABLE decors"}}},
		{name: "unknown sort column", opts: types.QueryOptions{SortOrder: "colour"}},
		{name: "bad direction", opts: types.QueryOptions{SortOrder: "price sideways"}},
		{name: "empty sort term", opts: types.QueryOptions{SortOrder: "price,"}},
		{name: "negative limit", opts: types.QueryOptions{Limit: -1}},
		{name: "negative offset", opts: types.QueryOptions{Offset: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Query(context.Background(), types.Selection{}, tt.opts)
			assert.ErrorIs(t, err, types.ErrInvalidQuery)
		})
	}
}

func TestQuery_BadSelectionIsStorageFailure(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.Query(context.Background(), types.Selection{Where: "no_such_column = 1"}, types.QueryOptions{})
	assert.ErrorIs(t, err, types.ErrStorageFailure)
}

func TestAdjustQuantity(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	empty := vase()
	empty.Quantity = types.Ptr(0)
	emptyID, err := b.Insert(ctx, empty)
	require.NoError(t, err)
	fullID, err := b.Insert(ctx, vase())
	require.NoError(t, err)

	t.Run("sale decrements", func(t *testing.T) {
		n, err := b.AdjustQuantity(ctx, byID(fullID), -1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 11, getDecor(t, b, fullID).Quantity)
	})

	t.Run("sale at zero fails without write", func(t *testing.T) {
		_, err := b.AdjustQuantity(ctx, byID(emptyID), -1)
		var ve *types.ValidationError
		require.True(t, errors.As(err, &ve), "got %v", err)
		assert.Equal(t, types.ColumnQuantity, ve.Field)
		assert.Equal(t, 0, getDecor(t, b, emptyID).Quantity)
	})

	t.Run("bulk adjustment is all or nothing", func(t *testing.T) {
		_, err := b.AdjustQuantity(ctx, types.Selection{}, -5)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Equal(t, 11, getDecor(t, b, fullID).Quantity)
	})

	t.Run("restock", func(t *testing.T) {
		n, err := b.AdjustQuantity(ctx, types.Selection{}, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, 3, getDecor(t, b, emptyID).Quantity)
		assert.Equal(t, 14, getDecor(t, b, fullID).Quantity)
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		n, err := b.AdjustQuantity(ctx, types.Selection{}, 0)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestConcurrentInserts(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 10

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				if _, err := b.Insert(gctx, vase()); err != nil {
					return err
				}
				cur, err := b.Query(gctx, types.Selection{}, types.QueryOptions{Limit: 1})
				if err != nil {
					return err
				}
				for cur.Next() {
				}
				if err := cur.Close(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	all := queryAll(t, b, types.Selection{}, types.QueryOptions{})
	require.Len(t, all, writers*perWriter)
	seen := make(map[int64]bool)
	for _, d := range all {
		assert.False(t, seen[d.ID], "duplicate id %d", d.ID)
		seen[d.ID] = true
	}
}

func names(decors []*types.Decor) []string {
	out := make([]string, len(decors))
	for i, d := range decors {
		out[i] = d.Name
	}
	return out
}
