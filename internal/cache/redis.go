// Package cache 提供 Redis 缓存操作的封装
// 处理 JWT 黑名单、接口限流计数等需要快速访问的数据
// Redis 是可选依赖：nil 的 *RedisCache 上所有方法都是安全的空操作
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kindspeak-server/internal/config"
)

// RedisCache 封装 Redis 客户端，提供业务相关的缓存操作
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 RedisCache 实例
// 参数:
//   - cfg: Redis 连接配置
//
// 返回:
//   - *RedisCache: 缓存实例；未启用时返回 (nil, nil)
//   - error: 连接错误
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewFromClient 使用已有客户端创建缓存，便于测试注入
func NewFromClient(client *redis.Client) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{client: client}
}

// Enabled 返回缓存是否可用
func (c *RedisCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// ==================== JWT 黑名单 ====================

func blacklistKey(tokenHash string) string {
	return fmt.Sprintf("jwt:blacklist:%s", tokenHash)
}

// BlacklistToken 将 Token 加入黑名单
// 登出时调用，TTL 为 Token 剩余有效期
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的哈希值（不存储原始 Token）
//   - expireAt: Token 的原始过期时间
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) BlacklistToken(ctx context.Context, tokenHash string, expireAt time.Time) error {
	if !c.Enabled() {
		return nil
	}
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, blacklistKey(tokenHash), "1", ttl).Err()
}

// IsTokenBlacklisted 检查 Token 是否在黑名单中
// Redis 不可用时视为未拉黑
func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenHash string) bool {
	if !c.Enabled() {
		return false
	}
	return c.client.Exists(ctx, blacklistKey(tokenHash)).Val() > 0
}

// ==================== 限流 ====================

// AllowN 固定窗口计数限流
// 窗口内第一次请求时设置过期时间，计数超过 limit 返回 false
// limit <= 0 或 Redis 不可用时总是放行
// 只使用 INCR / EXPIRE / TTL，兼容 Redis 7 以前的版本
// 参数:
//   - ctx: 上下文
//   - key: 限流维度，例如 analyze:42
//   - limit: 窗口内允许的次数
//   - window: 窗口长度
//
// 返回:
//   - bool: 是否放行
//   - error: Redis 操作错误（此时同样放行）
func (c *RedisCache) AllowN(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !c.Enabled() || limit <= 0 {
		return true, nil
	}

	fullKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := c.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return true, err
	}

	if count == 1 {
		if err := c.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return true, err
		}
		return true, nil
	}

	if count > int64(limit) {
		// 上次设置过期时间失败会让计数永不过期，这里补上
		ttl, err := c.client.TTL(ctx, fullKey).Result()
		if err == nil && ttl == -1 {
			c.client.Expire(ctx, fullKey, window)
		}
		return false, nil
	}
	return true, nil
}
