package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tableKeyPrefix = "perfeval:table:"
	tableListKey   = "perfeval:tables"
)

// TableCache 考核表缓存。client 为空时所有操作都是空操作
type TableCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTableCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TableCache {
	return &TableCache{client: client, ttl: ttl, logger: logger}
}

func tableKey(id uint) string {
	return fmt.Sprintf("%s%d", tableKeyPrefix, id)
}

// Get 读取缓存的考核表；未命中或出错返回 false
func (c *TableCache) Get(ctx context.Context, id uint) (*entity.EvaluationTable, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, tableKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("读取考核表缓存失败", zap.Uint("table_id", id), zap.Error(err))
		}
		return nil, false
	}

	var table entity.EvaluationTable
	if err := json.Unmarshal(data, &table); err != nil {
		c.logger.Warn("考核表缓存数据损坏", zap.Uint("table_id", id), zap.Error(err))
		c.client.Del(ctx, tableKey(id))
		return nil, false
	}
	return &table, true
}

// Set 写入考核表
func (c *TableCache) Set(ctx context.Context, table *entity.EvaluationTable) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(table)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, tableKey(table.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("写入考核表缓存失败", zap.Uint("table_id", table.ID), zap.Error(err))
	}
}

// GetList 读取考核表列表缓存
func (c *TableCache) GetList(ctx context.Context, out interface{}) bool {
	if c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, tableListKey).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetList 写入考核表列表缓存
func (c *TableCache) SetList(ctx context.Context, list interface{}) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, tableListKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("写入考核表列表缓存失败", zap.Error(err))
	}
}

// Invalidate 删除考核表及列表缓存
func (c *TableCache) Invalidate(ctx context.Context, id uint) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, tableKey(id), tableListKey).Err(); err != nil {
		c.logger.Warn("删除考核表缓存失败", zap.Uint("table_id", id), zap.Error(err))
	}
}
