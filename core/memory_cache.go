package core

import (
	"context"
	"sync"
	"time"
)

// cacheItem 缓存项
type cacheItem struct {
	value     string
	expiresAt time.Time
	timer     *time.Timer
}

// isExpired 判断缓存项是否过期
func (item *cacheItem) isExpired(now time.Time) bool {
	if item.expiresAt.IsZero() {
		return false // 永不过期
	}
	return !now.Before(item.expiresAt)
}

// MemoryCache 内存缓存实现
// 每个带 TTL 的缓存项挂一个定时器，到期后自动移除；Get 同时检查过期时间，
// 定时器稍有延迟也不会返回过期值。
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
}

// NewMemoryCache 创建内存缓存实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cacheItem),
	}
}

// Get 获取缓存值
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.isExpired(time.Now()) {
		return "", false
	}

	return item.value, true
}

// Set 设置缓存值
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, exists := c.items[key]; exists && old.timer != nil {
		old.timer.Stop()
	}

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
		item.timer = time.AfterFunc(ttl, func() { c.evict(key, item) })
	}
	c.items[key] = item

	return nil
}

// Delete 删除缓存
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		if item.timer != nil {
			item.timer.Stop()
		}
		delete(c.items, key)
	}
	return nil
}

// Len 返回当前缓存项数量（含尚未被定时器移除的过期项）
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evict 定时器回调，只移除仍是同一个缓存项的 key，避免误删后续写入
func (c *MemoryCache) evict(key string, item *cacheItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, exists := c.items[key]; exists && current == item {
		delete(c.items, key)
	}
}

// 确保 MemoryCache 实现了 Cache 接口
var _ Cache = (*MemoryCache)(nil)
