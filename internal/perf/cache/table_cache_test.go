package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *TableCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewTableCache(client, time.Minute, zap.NewNop())
}

func TestTableCache_SetGet(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, 3)
	assert.False(t, ok)

	c.Set(ctx, &entity.EvaluationTable{ID: 3, Name: "2026 Q1", ScoreRule: `[{"grade":"A","value":"10"}]`})
	assert.True(t, mr.Exists("perfeval:table:3"))

	got, ok := c.Get(ctx, 3)
	require.True(t, ok)
	assert.Equal(t, "2026 Q1", got.Name)
	assert.Equal(t, `[{"grade":"A","value":"10"}]`, got.ScoreRule)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, 3)
	assert.False(t, ok, "entry expires after ttl")
}

func TestTableCache_Invalidate(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	c.Set(ctx, &entity.EvaluationTable{ID: 1, Name: "a"})
	c.SetList(ctx, []map[string]interface{}{{"id": 1, "name": "a"}})
	require.True(t, mr.Exists("perfeval:tables"))

	c.Invalidate(ctx, 1)
	assert.False(t, mr.Exists("perfeval:table:1"))
	assert.False(t, mr.Exists("perfeval:tables"))
}

func TestTableCache_CorruptEntryDropped(t *testing.T) {
	mr, c := setupTestCache(t)
	require.NoError(t, mr.Set("perfeval:table:9", "{not json"))

	_, ok := c.Get(context.Background(), 9)
	assert.False(t, ok)
	assert.False(t, mr.Exists("perfeval:table:9"))
}

func TestTableCache_NilClient(t *testing.T) {
	c := NewTableCache(nil, time.Minute, zap.NewNop())
	ctx := context.Background()
	c.Set(ctx, &entity.EvaluationTable{ID: 1})
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	var list []int
	assert.False(t, c.GetList(ctx, &list))
	c.Invalidate(ctx, 1)
}
