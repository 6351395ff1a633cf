package main

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedisStore connects to the Redis named by REDIS_ADDR (default
// localhost:6379) and skips the test when none is reachable, so the suite
// stays runnable without infrastructure.
func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing redis: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background())
		_ = client.Close()
	})
	return NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	id, err := store.Insert(ctx, colCheeses, validCheese())
	require.NoError(t, err)
	assert.Regexp(t, "^[a-f0-9]{24}$", id)

	doc, err := store.Get(ctx, colCheeses, id)
	require.NoError(t, err)
	assert.Equal(t, "Brie", doc.stringField("name"))
	assert.Equal(t, id, doc.stringField(fieldID))

	replacement := validZone()
	require.NoError(t, store.Replace(ctx, colCheeses, id, replacement))
	doc, err = store.Get(ctx, colCheeses, id)
	require.NoError(t, err)
	assert.Equal(t, "cellar", doc.stringField("name"))
	assert.NotContains(t, doc, "weight")

	require.NoError(t, store.Delete(ctx, colCheeses, id))
	_, err = store.Get(ctx, colCheeses, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, colCheeses, id), ErrNotFound)
	assert.ErrorIs(t, store.Replace(ctx, colCheeses, id, replacement), ErrNotFound)
}

func TestRedisStoreListAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	cheeseA := "aaaaaaaaaaaaaaaaaaaaaaaa"
	cheeseB := "bbbbbbbbbbbbbbbbbbbbbbbb"
	zoneA := "cccccccccccccccccccccccc"
	zoneB := "dddddddddddddddddddddddd"

	for _, b := range []Binding{
		{CheeseID: cheeseA, ZoneID: zoneA},
		{CheeseID: cheeseB, ZoneID: zoneA},
		{CheeseID: cheeseA, ZoneID: zoneB},
	} {
		_, err := store.Insert(ctx, colAssignments, b.document())
		require.NoError(t, err)
	}

	all, err := store.List(ctx, colAssignments)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inZoneA, err := store.ListByFields(ctx, colAssignments, map[string]string{"zone_id": zoneA})
	require.NoError(t, err)
	assert.Len(t, inZoneA, 2)

	exact, err := store.FindByFields(ctx, colAssignments, map[string]string{"cheese_id": cheeseB, "zone_id": zoneA})
	require.NoError(t, err)
	assert.Equal(t, cheeseB, exact.stringField("cheese_id"))

	_, err = store.FindByFields(ctx, colAssignments, map[string]string{"cheese_id": cheeseB, "zone_id": zoneB})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteAll(ctx, colAssignments))
	require.NoError(t, store.DeleteAll(ctx, colAssignments))
	all, err = store.List(ctx, colAssignments)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemStoreDoesNotAliasCallerMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	doc := validCheese()
	id, err := store.Insert(ctx, colCheeses, doc)
	require.NoError(t, err)

	// Mutating the inserted document after the fact must not leak into the
	// store, and mutating a read result must not either.
	doc["name"] = "tampered"
	got, err := store.Get(ctx, colCheeses, id)
	require.NoError(t, err)
	assert.Equal(t, "Brie", got.stringField("name"))

	got["name"] = "tampered again"
	again, err := store.Get(ctx, colCheeses, id)
	require.NoError(t, err)
	assert.Equal(t, "Brie", again.stringField("name"))
}
