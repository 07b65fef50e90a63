package runner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("scsslint.runner")
	meter  = otel.Meter("scsslint.runner")
)

var (
	invokeLatency metric.Float64Histogram
	invokeTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		invokeLatency, err = meter.Float64Histogram(
			"scsslint_invoke_duration_seconds",
			metric.WithDescription("Duration of scss-lint process invocations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		invokeTotal, err = meter.Int64Counter(
			"scsslint_invoke_total",
			metric.WithDescription("Total number of scss-lint process invocations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startInvokeSpan(ctx context.Context, path, dir string, args []string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "scsslint.invoke",
		trace.WithAttributes(
			attribute.String("invoke.executable", path),
			attribute.String("invoke.dir", dir),
			attribute.Int("invoke.arg_count", len(args)),
		),
	)
}

func setInvokeSpanResult(span trace.Span, res *Result) {
	if res == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("invoke.exit_code", res.ExitCode),
		attribute.Bool("invoke.timed_out", res.TimedOut),
		attribute.Bool("invoke.truncated", res.Truncated),
	)
}

// outcome labels for scsslint_invoke_total.
const (
	outcomeExited   = "exited"
	outcomeSpawn    = "spawn_error"
	outcomeTimeout  = "timeout"
	outcomeCanceled = "canceled"
)

func recordInvokeMetrics(ctx context.Context, outcome string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	invokeLatency.Record(ctx, duration.Seconds(), attrs)
	invokeTotal.Add(ctx, 1, attrs)
}
