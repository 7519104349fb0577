package officialaccount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ShinyNito/officialwechat/core"
)

const (
	accessTokenPath           = "/cgi-bin/token"
	accessTokenCacheKeyPrefix = "officialaccount:access_token:"

	// DefaultImageBaseURL 二维码图片下载地址
	DefaultImageBaseURL = "https://mp.weixin.qq.com"
)

// Config 公众号配置
type Config struct {
	// AppID 公众号 AppID（必填）
	AppID string
	// AppSecret 公众号 AppSecret（必填）
	AppSecret string
	// RetryCount 每个操作失败后的重试次数（可选，nil 时为 core.DefaultRetryCount，不能为负）
	RetryCount *int
	// RetryInterval 两次重试之间的等待时间（可选，默认立即重试）
	RetryInterval time.Duration
	// Logger 日志配置（可选，零值关闭日志）
	Logger core.LoggerConfig
	// CacheAdapter 缓存适配器（可选，nil 时不缓存）
	CacheAdapter core.CacheAdapter
	// Cache 通用缓存，CacheAdapter 为 nil 时用它构造适配器
	Cache core.Cache
	// HTTPClient 自定义 HTTP 客户端（可选）
	HTTPClient *http.Client
	// BaseURL API 地址（可选，默认 core.DefaultBaseURL）
	BaseURL string
	// ImageBaseURL 二维码图片地址（可选，默认 DefaultImageBaseURL）
	ImageBaseURL string
}

// RetryCount 返回 n 的指针，便于填写 Config.RetryCount
func RetryCount(n int) *int {
	return &n
}

// Client 公众号客户端
type Client struct {
	cfg          Config
	logger       *slog.Logger
	cache        core.CacheAdapter
	retrier      *core.Retrier
	apiClient    *core.Client
	imageClient  *core.Client
	tokenManager *core.TokenManager
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// New 创建公众号客户端
// AppID 或 AppSecret 为空时返回匹配 core.ErrConfiguration 的错误，不会发起任何请求。
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = normalizeConfig(cfg)

	logger := cfg.Logger.Logger()
	retrier := core.NewRetrier(*cfg.RetryCount, cfg.RetryInterval)

	tokenClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	tokenManager, err := core.NewTokenManager(core.TokenManagerConfig{
		Cache:    cfg.CacheAdapter,
		CacheKey: accessTokenCacheKeyPrefix + cfg.AppID,
		Logger:   logger,
		Retrier:  retrier,
		Fetcher: func(ctx context.Context) (core.TokenFetchResult, error) {
			resp, err := core.NewTypedRequest[accessTokenResponse](tokenClient).
				Path(accessTokenPath).
				Query("grant_type", "client_credential").
				Query("appid", cfg.AppID).
				Query("secret", cfg.AppSecret).
				WithoutToken().
				Get(ctx)
			if err != nil {
				return core.TokenFetchResult{}, fmt.Errorf("request access token: %w", err)
			}
			return core.TokenFetchResult{Token: resp.AccessToken, ExpiresIn: resp.ExpiresIn}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenManager,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	imageClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.ImageBaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	return &Client{
		cfg:          cfg,
		logger:       logger,
		cache:        cfg.CacheAdapter,
		retrier:      retrier,
		apiClient:    apiClient,
		imageClient:  imageClient,
		tokenManager: tokenManager,
	}, nil
}

func (c *Client) AccessTokenProvider() core.AccessTokenProvider {
	return c.tokenManager
}

// GetAccessToken 获取 access_token，缓存命中时不发起请求
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.tokenManager.GetToken(ctx)
}

// InvalidateAccessToken 删除缓存中的 access_token
func (c *Client) InvalidateAccessToken(ctx context.Context) error {
	return c.tokenManager.InvalidateToken(ctx)
}

// RefreshAccessToken 忽略缓存重新拉取 access_token
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	return c.tokenManager.RefreshToken(ctx)
}

// withToken 在重试预算内执行一次需要 access_token 的调用。
// token 失效错误码会先删除缓存中的 token 再重试；获取 token 本身失败时直接返回。
func withToken[T any](ctx context.Context, c *Client, msg string, call func(ctx context.Context) (T, error)) (T, error) {
	return core.Retry(ctx, c.retrier, func(attempt int) (T, error) {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, core.ErrAccessToken) {
			return out, core.Permanent(err)
		}

		core.LogFailure(ctx, c.logger, msg, attempt, err)
		if core.IsTokenError(err) {
			if ierr := c.tokenManager.InvalidateToken(ctx); ierr != nil {
				c.logger.WarnContext(ctx, "invalidate access_token failed", slog.Any("error", ierr))
			}
		}
		return out, err
	})
}

// opError 包装操作失败；获取 token 失败的错误原样返回
func opError(sentinel, err error) error {
	if errors.Is(err, core.ErrAccessToken) {
		return err
	}
	return core.OpError(sentinel, err)
}
