package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ShinyNito/officialwechat/core"
)

const meterName = "github.com/ShinyNito/officialwechat/cache"

// Instrumented 为任意 core.Cache 记录操作次数与耗时
type Instrumented struct {
	wrapped   core.Cache
	cacheType string

	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewInstrumented 包装 c，provider 为 nil 时使用全局 MeterProvider
func NewInstrumented(c core.Cache, cacheType string, provider metric.MeterProvider) *Instrumented {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	operations, err := meter.Int64Counter(
		"cache.operations",
		metric.WithDescription("Total cache operations"),
	)
	if err != nil {
		otel.Handle(err)
	}

	duration, err := meter.Float64Histogram(
		"cache.operation.duration",
		metric.WithDescription("Cache operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &Instrumented{
		wrapped:    c,
		cacheType:  cacheType,
		operations: operations,
		duration:   duration,
	}
}

func (i *Instrumented) Get(ctx context.Context, key string) (string, bool) {
	start := time.Now()

	value, found := i.wrapped.Get(ctx, key)

	status := "miss"
	if found {
		status = "hit"
	}
	i.record(ctx, "get", status, time.Since(start))

	return value, found
}

func (i *Instrumented) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	start := time.Now()

	err := i.wrapped.Set(ctx, key, value, ttl)

	i.record(ctx, "set", statusOf(err), time.Since(start))
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()

	err := i.wrapped.Delete(ctx, key)

	i.record(ctx, "delete", statusOf(err), time.Since(start))
	return err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (i *Instrumented) record(ctx context.Context, operation, status string, duration time.Duration) {
	if i.operations != nil {
		i.operations.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("cache.type", i.cacheType),
				attribute.String("cache.operation", operation),
				attribute.String("cache.status", status),
			),
		)
	}
	if i.duration != nil {
		i.duration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(
				attribute.String("cache.type", i.cacheType),
				attribute.String("cache.operation", operation),
			),
		)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("cache.type", i.cacheType),
		attribute.String("cache."+operation+".status", status),
		attribute.Float64("cache."+operation+".duration", duration.Seconds()),
	)
}

var _ core.Cache = (*Instrumented)(nil)
