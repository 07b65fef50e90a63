package tools

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("scsslint.tools")

var (
	versionCacheHits metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		versionCacheHits, metricsErr = meter.Int64Counter(
			"scsslint_version_cache_hits_total",
			metric.WithDescription("Version queries served without invoking scss-lint"),
		)
	})
	return metricsErr
}

func recordCacheHit(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	versionCacheHits.Add(ctx, 1)
}
