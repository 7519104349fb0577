package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultExpireBuffer token 提前过期时间，避免缓存中的 token 在请求途中过期
const DefaultExpireBuffer = 5 * time.Minute

type TokenFetchResult struct {
	Token     string
	ExpiresIn int
}

type TokenFetcher func(ctx context.Context) (TokenFetchResult, error)

type TokenManagerConfig struct {
	// Cache 缓存适配器（可选，nil 表示每次都拉取）
	Cache    CacheAdapter
	CacheKey string
	Fetcher  TokenFetcher
	Logger   *slog.Logger
	// ExpireBuffer 写入缓存时从 expires_in 中扣除的时长，<=0 时使用 DefaultExpireBuffer
	ExpireBuffer time.Duration
	// Retrier 拉取失败时的重试策略，nil 时使用 DefaultRetryCount
	Retrier *Retrier
}

// TokenManager access_token 管理
// 缓存命中直接返回；未命中时拉取并按 expires_in - ExpireBuffer 写入缓存。
// 同一时刻的并发未命中合并为一次拉取。
type TokenManager struct {
	cache        CacheAdapter
	cacheKey     string
	fetcher      TokenFetcher
	logger       *slog.Logger
	expireBuffer time.Duration
	retrier      *Retrier

	group singleflight.Group
}

func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if cfg.CacheKey == "" {
		return nil, fmt.Errorf("cache key is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NopCacheAdapter{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = DisabledLogger().Logger()
	}

	expireBuffer := cfg.ExpireBuffer
	if expireBuffer <= 0 {
		expireBuffer = DefaultExpireBuffer
	}

	retrier := cfg.Retrier
	if retrier == nil {
		retrier = NewRetrier(DefaultRetryCount, 0)
	}

	return &TokenManager{
		cache:        cache,
		cacheKey:     cfg.CacheKey,
		fetcher:      cfg.Fetcher,
		logger:       logger,
		expireBuffer: expireBuffer,
		retrier:      retrier,
	}, nil
}

// CacheKey 缓存 access_token 使用的 key
func (m *TokenManager) CacheKey() string {
	return m.cacheKey
}

// GetToken 获取 access_token
// 缓存中的非空值直接返回，不再校验新鲜度。
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token, ok := m.cache.GetAccessToken(ctx, m.cacheKey); ok && token != "" {
		m.logger.DebugContext(ctx, "access_token from cache", slog.String("key", m.cacheKey))
		return token, nil
	}
	return m.fetch(ctx)
}

// InvalidateToken 删除缓存中的 access_token
func (m *TokenManager) InvalidateToken(ctx context.Context) error {
	if err := m.cache.DeleteAccessToken(ctx, m.cacheKey); err != nil {
		return fmt.Errorf("invalidate access token: %w", err)
	}
	m.logger.DebugContext(ctx, "access_token invalidated", slog.String("key", m.cacheKey))
	return nil
}

// RefreshToken 强制刷新 access_token
func (m *TokenManager) RefreshToken(ctx context.Context) (string, error) {
	if err := m.InvalidateToken(ctx); err != nil {
		m.logger.WarnContext(ctx, "invalidate before refresh failed", slog.Any("error", err))
	}
	return m.fetch(ctx)
}

func (m *TokenManager) fetch(ctx context.Context) (string, error) {
	// 共享的拉取不随单个调用方取消
	ch := m.group.DoChan(m.cacheKey, func() (any, error) {
		return m.fetchAndStore(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *TokenManager) fetchAndStore(ctx context.Context) (string, error) {
	result, err := Retry(ctx, m.retrier, func(attempt int) (TokenFetchResult, error) {
		result, err := m.fetcher(ctx)
		if err == nil && result.Token == "" {
			err = fmt.Errorf("empty token from fetcher")
		}
		if err != nil {
			LogFailure(ctx, m.logger, "fetch access_token failed", attempt, err)
			return TokenFetchResult{}, err
		}
		return result, nil
	})
	if err != nil {
		return "", OpError(ErrAccessToken, err)
	}

	m.logger.DebugContext(ctx, "access_token fetched", slog.Int("expires_in", result.ExpiresIn))

	ttl := time.Duration(result.ExpiresIn)*time.Second - m.expireBuffer
	if ttl <= 0 {
		m.logger.WarnContext(ctx, "access_token expires within buffer, not cached",
			slog.Int("expires_in", result.ExpiresIn),
		)
		return result.Token, nil
	}
	if err := m.cache.SetAccessToken(ctx, m.cacheKey, result.Token, ttl); err != nil {
		m.logger.WarnContext(ctx, "cache access_token failed", slog.String("key", m.cacheKey), slog.Any("error", err))
	}

	return result.Token, nil
}

// LogFailure 在重试决策前记录失败：微信错误记录 errcode/errmsg，其他错误记录 error
func LogFailure(ctx context.Context, logger *slog.Logger, msg string, attempt int, err error) {
	attrs := []slog.Attr{slog.Int("attempt", attempt)}
	if we, ok := errors.AsType[*WechatError](err); ok {
		attrs = append(attrs, slog.Int("errcode", we.ErrCode), slog.String("errmsg", we.ErrMsg))
	} else {
		attrs = append(attrs, slog.Any("error", err))
	}
	logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

var _ AccessTokenProvider = (*TokenManager)(nil)
