// Package observe 配置命令行工具的日志与遥测。
package observe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// slog.LevelDebug 经 logr 转换后的 V 级别
const debugVerbosity = 4

// NewLogger 创建以 zerolog 输出的 *slog.Logger
// level 支持 debug、info、error；format 支持 console、json。
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	zlevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	// 全局级别放到最低，只由 logger 自身的级别过滤
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	case "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	zl := zerolog.New(w).With().Timestamp().Logger().Level(zlevel)
	return slog.New(logr.ToSlogHandler(zerologr.New(&zl))), nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.Level(1 - debugVerbosity), nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
