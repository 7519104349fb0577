package officialaccount

import (
	"fmt"
	"strings"

	"github.com/ShinyNito/officialwechat/core"
)

// Validate 校验公众号配置
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", core.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.AppID) == "" {
		return fmt.Errorf("%w: appid is required", core.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.AppSecret) == "" {
		return fmt.Errorf("%w: appsecret is required", core.ErrConfiguration)
	}
	if cfg.RetryCount != nil && *cfg.RetryCount < 0 {
		return fmt.Errorf("%w: retry count must not be negative", core.ErrConfiguration)
	}
	if cfg.RetryInterval < 0 {
		return fmt.Errorf("%w: retry interval must not be negative", core.ErrConfiguration)
	}
	return nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.RetryCount == nil {
		cfg.RetryCount = RetryCount(core.DefaultRetryCount)
	} else {
		cfg.RetryCount = RetryCount(*cfg.RetryCount)
	}
	if cfg.CacheAdapter == nil {
		cfg.CacheAdapter = core.NewCacheAdapter(cfg.Cache, nil)
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	return cfg
}
