package cache

import (
	"log/slog"
)

type options struct {
	logger *slog.Logger
	prefix string
}

// Option 存储实现的可选配置
type Option func(*options)

// WithLogger 设置读写失败时使用的日志
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPrefix 为所有 key 添加前缀，多个应用共用同一存储时使用
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) key(key string) string {
	if o.prefix == "" {
		return key
	}
	return o.prefix + key
}
