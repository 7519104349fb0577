package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShinyNito/officialwechat/core"
)

// DefaultRedisPrefix 未指定前缀时 Redis key 使用的前缀
const DefaultRedisPrefix = "officialwechat:"

// Redis 基于 Redis 的共享缓存，多个进程可共用同一份 access_token
// 读取失败记为未命中，调用方会重新拉取。
type Redis struct {
	client redis.Cmdable
	opts   options
}

// NewRedis 使用已有的 go-redis 客户端创建缓存
func NewRedis(client redis.Cmdable, opts ...Option) *Redis {
	o := buildOptions(append([]Option{WithPrefix(DefaultRedisPrefix)}, opts...))
	return &Redis{client: client, opts: o}
}

// OpenRedis 解析 redis:// URL 并确认连接可用
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, r.opts.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.opts.logger.WarnContext(ctx, "redis get failed", slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}
	return value, true
}

// Set 写入缓存，ttl 为 0 时不过期
func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.opts.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.opts.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

var _ core.Cache = (*Redis)(nil)
