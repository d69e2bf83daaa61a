package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/decors/internal/sqlite"
	"github.com/mesh-intelligence/decors/pkg/types"
)

// counter is an observer that counts notifications.
type counter struct{ n atomic.Int32 }

func (c *counter) OnChange(string) { c.n.Add(1) }
func (c *counter) count() int      { return int(c.n.Load()) }

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return New(nil, b, nil)
}

func lamp() types.DecorValues {
	return types.DecorValues{
		Name:     types.Ptr("Lamp"),
		Material: types.Ptr(types.MaterialGlass),
		Price:    types.Ptr(decimal.NewFromInt(10)),
		Quantity: types.Ptr(5),
	}
}

func TestInsertThenUpdateByItem(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	id, err := p.Insert(ctx, types.CollectionLocator, lamp())
	require.NoError(t, err)

	n, err := p.Update(ctx, types.ItemLocator(id), types.Selection{}, types.DecorValues{Quantity: types.Ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := p.Get(ctx, types.ItemLocator(id))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Price))
}

func TestInsert_EmptyNameFails(t *testing.T) {
	p := newTestProvider(t)
	obs := &counter{}
	_, err := p.Subscribe(types.CollectionLocator, obs)
	require.NoError(t, err)

	values := lamp()
	values.Name = types.Ptr("")
	_, err = p.Insert(context.Background(), types.CollectionLocator, values)

	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, types.ColumnName, ve.Field)
	assert.Zero(t, obs.count(), "failed insert notifies no one")
}

func TestInsert_ItemLocatorRejected(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.Insert(context.Background(), types.ItemLocator(1), lamp())

	var ure *types.UnrecognizedResourceError
	require.True(t, errors.As(err, &ure))
	assert.Equal(t, "insert", ure.Op)
}

func TestUnrecognizedLocator(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	bad := "content://com.example.android.decorsinventory/pets"

	_, err := p.Query(ctx, bad, types.Selection{}, types.QueryOptions{})
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
	_, err = p.Insert(ctx, bad, lamp())
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
	_, err = p.Update(ctx, bad, types.Selection{}, types.DecorValues{Quantity: types.Ptr(1)})
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
	_, err = p.Delete(ctx, bad, types.Selection{})
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
	_, err = p.Type(bad)
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
	_, err = p.Subscribe(bad, &counter{})
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
}

func TestQuery_EmptyCollection(t *testing.T) {
	p := newTestProvider(t)
	cur, err := p.Query(context.Background(), types.CollectionLocator, types.Selection{}, types.QueryOptions{})
	require.NoError(t, err)
	defer cur.Close()

	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
	assert.Equal(t, types.CollectionLocator, cur.NotificationLocator())

	all, err := p.List(context.Background(), types.CollectionLocator)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_ItemIgnoresExtraFilter(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	first, err := p.Insert(ctx, types.CollectionLocator, lamp())
	require.NoError(t, err)
	_, err = p.Insert(ctx, types.CollectionLocator, lamp())
	require.NoError(t, err)

	n, err := p.Delete(ctx, types.ItemLocator(first), types.Selection{Where: "1 = 1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := p.List(ctx, types.CollectionLocator)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNotifications(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	collection := &counter{}
	_, err := p.Subscribe(types.CollectionLocator, collection)
	require.NoError(t, err)

	id, err := p.Insert(ctx, types.CollectionLocator, lamp())
	require.NoError(t, err)
	assert.Equal(t, 1, collection.count(), "insert notifies the collection once")

	item := &counter{}
	cancel, err := p.Subscribe(types.ItemLocator(id), item)
	require.NoError(t, err)

	other := &counter{}
	_, err = p.Subscribe(types.ItemLocator(id+100), other)
	require.NoError(t, err)

	n, err := p.Update(ctx, types.ItemLocator(id), types.Selection{}, types.DecorValues{Quantity: types.Ptr(1)})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	assert.Equal(t, 2, collection.count())
	assert.Equal(t, 1, item.count())
	assert.Zero(t, other.count(), "unrelated item is not notified")

	t.Run("empty update notifies no one", func(t *testing.T) {
		n, err := p.Update(ctx, types.ItemLocator(id), types.Selection{}, types.DecorValues{})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 2, collection.count())
	})

	t.Run("zero-row mutations notify no one", func(t *testing.T) {
		_, err := p.Delete(ctx, types.ItemLocator(id+100), types.Selection{})
		require.NoError(t, err)
		_, err = p.Update(ctx, types.CollectionLocator, types.Selection{Where: "name = ?", Args: []any{"nothing"}},
			types.DecorValues{Quantity: types.Ptr(1)})
		require.NoError(t, err)
		assert.Equal(t, 2, collection.count())
		assert.Zero(t, other.count())
	})

	t.Run("failed adjustment notifies no one", func(t *testing.T) {
		_, err := p.AdjustQuantity(ctx, types.ItemLocator(id), types.Selection{}, -5)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Equal(t, 2, collection.count())
	})

	t.Run("collection-wide change reaches item observers", func(t *testing.T) {
		n, err := p.AdjustQuantity(ctx, types.CollectionLocator, types.Selection{}, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 3, collection.count())
		assert.Equal(t, 2, item.count())
	})

	t.Run("cancelled observer is not notified", func(t *testing.T) {
		cancel()
		_, err := p.Remove(ctx, types.ItemLocator(id))
		require.NoError(t, err)
		assert.Equal(t, 2, item.count())
		assert.Equal(t, 4, collection.count())
	})
}

func TestCursorWatch(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	cur, err := p.Query(ctx, types.CollectionLocator, types.Selection{}, types.QueryOptions{})
	require.NoError(t, err)

	obs := &counter{}
	require.NoError(t, cur.Watch(obs))

	_, err = p.Create(ctx, lamp())
	require.NoError(t, err)
	assert.Equal(t, 1, obs.count())

	require.NoError(t, cur.Close())
	_, err = p.Create(ctx, lamp())
	require.NoError(t, err)
	assert.Equal(t, 1, obs.count())
}

func TestGet(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.Get(ctx, types.ItemLocator(42))
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = p.Get(ctx, types.CollectionLocator)
	assert.ErrorIs(t, err, types.ErrUnrecognizedResource)
}

func TestType(t *testing.T) {
	p := newTestProvider(t)
	got, err := p.Type(types.CollectionLocator)
	require.NoError(t, err)
	assert.Equal(t, types.CollectionType, got)

	got, err = p.Type(types.ItemLocator(1))
	require.NoError(t, err)
	assert.Equal(t, types.ItemType, got)
}

// failingEngine fails every write with a storage error.
type failingEngine struct {
	types.Engine
}

func (failingEngine) Insert(context.Context, types.DecorValues) (int64, error) {
	return 0, &types.StorageError{Op: "insert", Err: errors.New("disk full")}
}

func TestInsert_StorageFailureNotifiesNoOne(t *testing.T) {
	p := New(nil, failingEngine{}, nil)
	obs := &counter{}
	_, err := p.Subscribe(types.CollectionLocator, obs)
	require.NoError(t, err)

	_, err = p.Insert(context.Background(), types.CollectionLocator, lamp())
	assert.ErrorIs(t, err, types.ErrStorageFailure)
	assert.Zero(t, obs.count())
}
