package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/kvstore"
)

func setupStore(t *testing.T) (*kvstore.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return kvstore.NewRedisStore(client, ""), mr
}

func item(id uint64, price string) Item {
	return Item{
		ProductID: id,
		Name:      "product",
		Price:     decimal.RequireFromString(price),
		Stock:     10,
	}
}

type failingStore struct {
	kvstore.Store
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestAddMergesQuantities(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, item(7, "500"), 2))
	require.NoError(t, c.Add(ctx, item(7, "500"), 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, decimal.NewFromInt(2500).Equal(c.Subtotal()))
}

func TestAddRejectsInvalidQuantity(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Add(ctx, item(1, "10"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(ctx, item(1, "10"), -2), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "100"), 1))

	before, err := mr.Get("u1:cart")
	require.NoError(t, err)

	calls := 0
	c.Subscribe(func(Snapshot) { calls++ })

	require.NoError(t, c.Remove(ctx, 99))
	assert.Equal(t, 0, calls)
	assert.Len(t, c.Items(), 1)

	after, err := mr.Get("u1:cart")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetQuantity(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "100"), 1))
	require.NoError(t, c.Add(ctx, item(2, "50"), 1))

	require.NoError(t, c.SetQuantity(ctx, 1, 4))
	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 4, got.Quantity)

	require.NoError(t, c.SetQuantity(ctx, 2, 0))
	_, ok = c.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 4, c.ItemCount())

	// Setting the quantity of a product that is not in the cart does not add it.
	require.NoError(t, c.SetQuantity(ctx, 3, 2))
	_, ok = c.Get(3)
	assert.False(t, ok)
}

func TestEveryChangeIsPersisted(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "100"), 2))
	require.NoError(t, c.Add(ctx, item(2, "49.50"), 1))

	reloaded, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.ItemCount())
	assert.True(t, decimal.RequireFromString("249.5").Equal(reloaded.Subtotal()))

	require.NoError(t, c.Clear(ctx))
	reloaded, err = Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	assert.True(t, reloaded.IsEmpty())
	assert.NotNil(t, reloaded.Items())
}

func TestUnreadablePayloadIsEmpty(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("u1:cart", "{not json"))

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.Add(ctx, item(1, "10"), 1))
	stored, err := mr.Get("u1:cart")
	require.NoError(t, err)
	assert.Contains(t, stored, `"product_id":1`)
}

func TestFailedWriteKeepsState(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "10"), 1))

	c.store = failingStore{Store: store}
	require.Error(t, c.Add(ctx, item(1, "10"), 1))
	assert.Equal(t, 1, c.ItemCount())
}

func TestGuestCartExpires(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "guest-abc", time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "10"), 1))

	mr.FastForward(2 * time.Hour)

	reloaded, err := Load(ctx, store, "guest-abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, reloaded.IsEmpty())
}

func TestMerge(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, item(1, "10"), 1))

	guest := []Item{item(1, "10"), item(2, "20")}
	guest[0].Quantity = 2
	guest[1].Quantity = 1

	require.NoError(t, c.Merge(ctx, guest))

	one, _ := c.Get(1)
	two, _ := c.Get(2)
	assert.Equal(t, 3, one.Quantity)
	assert.Equal(t, 1, two.Quantity)
}

func TestSubscribe(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)

	var seen []int
	cancel := c.Subscribe(func(s Snapshot) { seen = append(seen, s.ItemCount) })

	require.NoError(t, c.Add(ctx, item(1, "10"), 2))
	require.NoError(t, c.SetQuantity(ctx, 1, 5))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, []int{2, 5, 0}, seen)

	cancel()
	require.NoError(t, c.Add(ctx, item(1, "10"), 1))
	assert.Len(t, seen, 3)
}
