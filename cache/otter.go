package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/ShinyNito/officialwechat/core"
)

// DefaultMaximumSize Otter 默认容量
const DefaultMaximumSize = 10_000

// ttl 为 0 的值按此时长保存
const noExpiry = 100 * 365 * 24 * time.Hour

type otterEntry struct {
	value string
	ttl   time.Duration
}

// Otter 基于 otter 的进程内缓存，每个值按写入时给出的 TTL 过期，容量满时按 S3-FIFO 淘汰
type Otter struct {
	cache *otter.Cache[string, otterEntry]
}

// NewOtter 创建进程内缓存，maximumSize <= 0 时使用 DefaultMaximumSize
func NewOtter(maximumSize int) *Otter {
	if maximumSize <= 0 {
		maximumSize = DefaultMaximumSize
	}

	c := otter.Must(&otter.Options[string, otterEntry]{
		MaximumSize: maximumSize,
		ExpiryCalculator: otter.ExpiryWritingFunc(func(entry otter.Entry[string, otterEntry]) time.Duration {
			if entry.Value.ttl <= 0 {
				return noExpiry
			}
			return entry.Value.ttl
		}),
	})

	return &Otter{cache: c}
}

func (o *Otter) Get(_ context.Context, key string) (string, bool) {
	entry, ok := o.cache.GetIfPresent(key)
	if !ok {
		return "", false
	}
	return entry.value, true
}

func (o *Otter) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	o.cache.Set(key, otterEntry{value: value, ttl: ttl})
	return nil
}

func (o *Otter) Delete(_ context.Context, key string) error {
	o.cache.Invalidate(key)
	return nil
}

var _ core.Cache = (*Otter)(nil)
