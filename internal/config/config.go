// Package config 加载命令行工具的配置：先读取 .env 文件，再解析环境变量。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// 缓存类型
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheOtter  = "otter"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

var cacheTypes = []string{CacheNone, CacheMemory, CacheOtter, CacheRedis, CacheSQLite}

type Config struct {
	// 公众号配置
	AppID         string        `env:"WECHAT_APP_ID"`
	AppSecret     string        `env:"WECHAT_APP_SECRET"`
	RetryCount    int           `env:"WECHAT_RETRY_COUNT" envDefault:"1"`
	RetryInterval time.Duration `env:"WECHAT_RETRY_INTERVAL" envDefault:"0s"`
	BaseURL       string        `env:"WECHAT_BASE_URL"`
	ImageBaseURL  string        `env:"WECHAT_IMAGE_BASE_URL"`
	HTTPTimeout   time.Duration `env:"WECHAT_HTTP_TIMEOUT" envDefault:"30s"`

	Cache   CacheConfig   `envPrefix:"WECHAT_CACHE_"`
	Observe ObserveConfig `envPrefix:"WECHAT_"`
}

type CacheConfig struct {
	Type     string `env:"TYPE" envDefault:"none"` // none, memory, otter, redis, sqlite
	Path     string `env:"PATH" envDefault:"officialwechat.db"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Prefix   string `env:"PREFIX" envDefault:"officialwechat:"`
	MaxSize  int    `env:"MAX_SIZE" envDefault:"10000"`
	Metrics  bool   `env:"METRICS" envDefault:"false"`
}

type ObserveConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`     // debug, info, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console, json
	Trace     bool   `env:"TRACE" envDefault:"false"`
}

// Load 加载配置
// 未指定文件时尝试读取当前目录的 .env，文件不存在不算错误；已存在的环境变量优先。
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验命令行自身的配置，AppID/AppSecret 由客户端构造时校验
func (c Config) Validate() error {
	if !slices.Contains(cacheTypes, c.Cache.Type) {
		return fmt.Errorf("unknown cache type %q, expected one of %v", c.Cache.Type, cacheTypes)
	}
	if c.Cache.Type == CacheSQLite && c.Cache.Path == "" {
		return fmt.Errorf("WECHAT_CACHE_PATH is required for sqlite cache")
	}
	if c.Cache.Type == CacheRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("WECHAT_CACHE_REDIS_URL is required for redis cache")
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("WECHAT_RETRY_COUNT must not be negative")
	}
	return nil
}
