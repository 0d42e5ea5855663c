package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// StatsCache 用户统计的 Redis 缓存；Redis 未配置时所有操作为空操作
type StatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{Redis: rdb, TTL: ttl}
}

func statsKey(userID string) string {
	return "stats:user:" + userID
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.Redis != nil && c.TTL > 0
}

// Get 命中时把缓存内容解码到 dest 并返回 true
func (c *StatsCache) Get(ctx context.Context, userID string, dest interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}

	val, err := c.Redis.Get(ctx, statsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, userID string, value interface{}) error {
	if !c.enabled() {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, statsKey(userID), payload, c.TTL).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if !c.enabled() {
		return nil
	}
	return c.Redis.Del(ctx, statsKey(userID)).Err()
}
