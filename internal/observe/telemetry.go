package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type TelemetryConfig struct {
	// Trace 将每个 HTTP 请求的 span 输出到 Writer
	Trace bool
	// Metrics 退出时将缓存指标输出到 Writer
	Metrics bool
}

// ShutdownFunc 刷新并关闭已配置的 provider
type ShutdownFunc func(context.Context) error

// Configure 按配置注册全局 TracerProvider 与 MeterProvider
func Configure(ctx context.Context, w io.Writer, cfg TelemetryConfig) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if cfg.Metrics {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return shutdown, nil
}

// HTTPTransport 启用追踪时为 base 包一层 otelhttp
func HTTPTransport(base http.RoundTripper, cfg TelemetryConfig) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !cfg.Trace {
		return base
	}
	return otelhttp.NewTransport(base)
}
