package core

import (
	"log/slog"
)

type loggerKind int

const (
	loggerDisabled loggerKind = iota
	loggerDefault
	loggerCustom
)

// LoggerConfig 日志配置
// 零值表示关闭日志。
type LoggerConfig struct {
	kind   loggerKind
	logger *slog.Logger
}

// DisabledLogger 关闭日志
func DisabledLogger() LoggerConfig {
	return LoggerConfig{kind: loggerDisabled}
}

// DefaultLogger 使用 slog.Default()
func DefaultLogger() LoggerConfig {
	return LoggerConfig{kind: loggerDefault}
}

// CustomLogger 使用调用方提供的 logger，传入 nil 等同于关闭日志
func CustomLogger(logger *slog.Logger) LoggerConfig {
	if logger == nil {
		return DisabledLogger()
	}
	return LoggerConfig{kind: loggerCustom, logger: logger}
}

// Enabled 是否输出日志
func (c LoggerConfig) Enabled() bool {
	return c.kind != loggerDisabled
}

// Logger 解析出实际使用的 *slog.Logger，从不返回 nil
func (c LoggerConfig) Logger() *slog.Logger {
	switch c.kind {
	case loggerDefault:
		return slog.Default()
	case loggerCustom:
		return c.logger
	default:
		return slog.New(slog.DiscardHandler)
	}
}
