package wishlist

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/models"
)

func setupStore(t *testing.T) (*kvstore.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return kvstore.NewRedisStore(client, ""), mr
}

func product(id uint64) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Saved product",
		Price: decimal.NewFromInt(250),
		Stock: 3,
	}
}

func TestAddIsIdempotent(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	w, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)

	require.NoError(t, w.Add(ctx, NewEntry(product(1))))
	require.NoError(t, w.Add(ctx, NewEntry(product(1))))

	assert.Equal(t, 1, w.Len())
	assert.True(t, w.Contains(1))
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	w, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, w.Add(ctx, NewEntry(product(1))))

	calls := 0
	w.Subscribe(func(Snapshot) { calls++ })

	require.NoError(t, w.Remove(ctx, 42))
	assert.Equal(t, 1, w.Len())
	assert.Zero(t, calls)

	require.NoError(t, w.Remove(ctx, 1))
	assert.False(t, w.Contains(1))
	assert.Equal(t, 1, calls)
}

func TestPersistedUnderOwnerKey(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	w, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, w.Add(ctx, NewEntry(product(5))))

	assert.True(t, mr.Exists("u1:wishlist"))

	reloaded, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains(5))

	require.NoError(t, reloaded.Clear(ctx))
	assert.False(t, mr.Exists("u1:wishlist"))
	assert.Empty(t, reloaded.Items())
	assert.NotNil(t, reloaded.Items())
}

func TestUnreadablePayloadIsEmpty(t *testing.T) {
	store, mr := setupStore(t)
	require.NoError(t, mr.Set("u1:wishlist", "null-ish"))

	w, err := Load(context.Background(), store, "u1", 0)
	require.NoError(t, err)
	assert.Zero(t, w.Len())
}

func TestMoveToCart(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	w, err := Load(ctx, store, "u1", 0)
	require.NoError(t, err)
	c, err := cart.Load(ctx, store, "u1", 0)
	require.NoError(t, err)

	require.NoError(t, w.Add(ctx, NewEntry(product(3))))
	require.NoError(t, w.MoveToCart(ctx, 3, c))

	assert.False(t, w.Contains(3))
	item, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, decimal.NewFromInt(250).Equal(item.Price))

	assert.ErrorIs(t, w.MoveToCart(ctx, 3, c), ErrNotInWishlist)
}
