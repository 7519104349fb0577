package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ShinyNito/officialwechat/cache"
	"github.com/ShinyNito/officialwechat/core"
	"github.com/ShinyNito/officialwechat/internal/config"
	"github.com/ShinyNito/officialwechat/internal/observe"
	"github.com/ShinyNito/officialwechat/officialaccount"
)

// app 一次命令执行所需的依赖
type app struct {
	cfg    config.Config
	logger *slog.Logger
	client *officialaccount.Client
	stdout io.Writer
	stderr io.Writer

	closers []func(context.Context) error
}

func newApp(ctx context.Context, envFiles []string, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("configuration load failed: %w", err)
	}

	logger, err := observe.NewLogger(stderr, cfg.Observe.LogLevel, cfg.Observe.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger configuration failed: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	telemetry := observe.TelemetryConfig{Trace: cfg.Observe.Trace, Metrics: cfg.Cache.Metrics}
	shutdownTelemetry, err := observe.Configure(ctx, stderr, telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry bootstrap failed: %w", err)
	}
	a.closers = append(a.closers, shutdownTelemetry)

	store, err := a.openCache(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("cache configuration failed: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: observe.HTTPTransport(http.DefaultTransport, telemetry),
	}

	client, err := officialaccount.New(officialaccount.Config{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		RetryCount:    officialaccount.RetryCount(cfg.RetryCount),
		RetryInterval: cfg.RetryInterval,
		Logger:        core.CustomLogger(logger),
		Cache:         store,
		HTTPClient:    httpClient,
		BaseURL:       cfg.BaseURL,
		ImageBaseURL:  cfg.ImageBaseURL,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.client = client

	return a, nil
}

// openCache 按配置创建缓存，type 为 none 时返回 nil（不缓存）
func (a *app) openCache(ctx context.Context) (core.Cache, error) {
	cc := a.cfg.Cache

	var store core.Cache
	switch cc.Type {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		store = core.NewMemoryCache()
	case config.CacheOtter:
		store = cache.NewOtter(cc.MaxSize)
	case config.CacheRedis:
		client, err := cache.OpenRedis(ctx, cc.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		store = cache.NewRedis(client, cache.WithPrefix(cc.Prefix), cache.WithLogger(a.logger))
	case config.CacheSQLite:
		s, err := cache.OpenSQLite(ctx, cc.Path, cache.WithPrefix(cc.Prefix), cache.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		store = s
	default:
		return nil, fmt.Errorf("unknown cache type %q", cc.Type)
	}

	if cc.Metrics {
		store = cache.NewInstrumented(store, cc.Type, nil)
	}
	return store, nil
}

// Close 按打开的逆序释放资源
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.WarnContext(ctx, "close failed", slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.closers = nil
	return firstErr
}
