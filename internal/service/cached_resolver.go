package service

import (
	"context"
	"encoding/json"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"cms-redirect-go/constant"
	"cms-redirect-go/internal/dto"
	"cms-redirect-go/pkg/logging"
)

// CachedResolver 是 RedirectResolver 的缓存装饰器，键为 sourcePostId。
// 缓存只存在于组件外部，Resolver 本身保持无状态。
// Redis 故障时直接穿透到内层解析（fail open）。
type CachedResolver struct {
	inner *RedirectResolver
	pool  *redis.Pool
}

func NewCachedResolver(inner *RedirectResolver, pool *redis.Pool) *CachedResolver {
	return &CachedResolver{inner: inner, pool: pool}
}

func (c *CachedResolver) Resolve(ctx context.Context, sourcePostID uint) *dto.RedirectDecision {
	if c.pool == nil {
		return c.inner.Resolve(ctx, sourcePostID)
	}

	cacheKey := constant.GetResolveKey(sourcePostID)

	conn := c.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	// 先查缓存
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err == nil {
		if string(cachedValue) == "" {
			// 空值缓存：确认过无重定向
			return nil
		}
		var decision dto.RedirectDecision
		if err := json.Unmarshal(cachedValue, &decision); err == nil {
			return &decision
		}
		logging.Logger.Warn("Failed to unmarshal cached decision",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	} else if err != redis.ErrNil {
		logging.Logger.Warn("Error getting from Redis",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}

	// 缓存未命中，走内层解析
	decision := c.inner.Resolve(ctx, sourcePostID)
	if decision == nil {
		// 缓存空值，防止缓存穿透
		if _, err := conn.Do("SET", cacheKey, "", "EX", constant.ResolveNegativeCacheTTL); err != nil {
			logging.Logger.Error("设置缓存失败",
				zap.String("cache_key", cacheKey),
				zap.Error(err),
			)
		}
		return nil
	}

	cachedValue, _ = json.Marshal(decision)
	if _, err := conn.Do("SET", cacheKey, cachedValue, "EX", constant.ResolveCacheTTL); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}

	return decision
}

// Invalidate 使某个源文章的缓存失效。
// 重定向写入时要同时失效其源文章和当前目标文章的缓存。
func (c *CachedResolver) Invalidate(sourcePostID uint) {
	if c.pool == nil {
		return
	}

	conn := c.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	cacheKey := constant.GetResolveKey(sourcePostID)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		logging.Logger.Warn("Redis 删除缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}
