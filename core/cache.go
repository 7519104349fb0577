package core

import (
	"context"
	"time"
)

// Cache 通用缓存接口
// 提供基础的字符串读写与删除能力，CacheAdapter 基于它缓存 access token 与二维码。
type Cache interface {
	// Get 获取缓存值
	// 根据 key 读取缓存中的字符串值，若不存在或已过期则返回空字符串与 false。
	//
	// 参数:
	//   - ctx: 上下文
	//   - key: 缓存键
	//
	// 返回:
	//   - string: 命中时的缓存值，未命中时为空字符串
	//   - bool: 是否命中缓存
	Get(ctx context.Context, key string) (string, bool)

	// Set 写入缓存值
	// 将字符串值写入缓存并设置 TTL，TTL 为 0 时表示永不过期。
	//
	// 参数:
	//   - ctx: 上下文
	//   - key: 缓存键
	//   - value: 要写入的字符串值
	//   - ttl: 生存时间，0 表示永不过期
	//
	// 错误:
	//   - 底层存储写入失败
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete 删除缓存值
	// 删除指定 key 的缓存项，若 key 不存在应静默成功。
	//
	// 错误:
	//   - 底层存储删除失败
	Delete(ctx context.Context, key string) error
}

// CacheAdapter 公众号客户端使用的缓存适配器
// 两类值（access token、二维码图片）相互独立，过期由适配器自行负责：
// 过期后 Get 必须返回未命中，客户端不会再次校验新鲜度。
// 实现必须支持并发读写。
type CacheAdapter interface {
	SetAccessToken(ctx context.Context, key, value string, ttl time.Duration) error
	GetAccessToken(ctx context.Context, key string) (string, bool)
	DeleteAccessToken(ctx context.Context, key string) error
	SetQRCode(ctx context.Context, key, value string, ttl time.Duration) error
	GetQRCode(ctx context.Context, key string) (string, bool)
}

// NewCacheAdapter 基于通用 Cache 构造 CacheAdapter
// qrcodes 为 nil 时二维码与 token 共用同一个存储。
func NewCacheAdapter(tokens, qrcodes Cache) CacheAdapter {
	if tokens == nil {
		return NopCacheAdapter{}
	}
	if qrcodes == nil {
		qrcodes = tokens
	}
	return &kvCacheAdapter{tokens: tokens, qrcodes: qrcodes}
}

type kvCacheAdapter struct {
	tokens  Cache
	qrcodes Cache
}

func (a *kvCacheAdapter) SetAccessToken(ctx context.Context, key, value string, ttl time.Duration) error {
	return a.tokens.Set(ctx, key, value, ttl)
}

func (a *kvCacheAdapter) GetAccessToken(ctx context.Context, key string) (string, bool) {
	return a.tokens.Get(ctx, key)
}

func (a *kvCacheAdapter) DeleteAccessToken(ctx context.Context, key string) error {
	return a.tokens.Delete(ctx, key)
}

func (a *kvCacheAdapter) SetQRCode(ctx context.Context, key, value string, ttl time.Duration) error {
	return a.qrcodes.Set(ctx, key, value, ttl)
}

func (a *kvCacheAdapter) GetQRCode(ctx context.Context, key string) (string, bool) {
	return a.qrcodes.Get(ctx, key)
}

// NopCacheAdapter 不缓存任何内容，每次调用都走网络
type NopCacheAdapter struct{}

func (NopCacheAdapter) SetAccessToken(context.Context, string, string, time.Duration) error {
	return nil
}

func (NopCacheAdapter) GetAccessToken(context.Context, string) (string, bool) { return "", false }

func (NopCacheAdapter) DeleteAccessToken(context.Context, string) error { return nil }

func (NopCacheAdapter) SetQRCode(context.Context, string, string, time.Duration) error {
	return nil
}

func (NopCacheAdapter) GetQRCode(context.Context, string) (string, bool) { return "", false }

var (
	_ CacheAdapter = (*kvCacheAdapter)(nil)
	_ CacheAdapter = NopCacheAdapter{}
)
