package lint

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
	tracer = otel.Tracer("scsslint.lint")
	meter  = otel.Meter("scsslint.lint")
)

var (
	lintLatency   metric.Float64Histogram
	issuesFound   metric.Int64Histogram
	errorsFound   metric.Int64Counter
	warningsFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"scsslint_lint_duration_seconds",
			metric.WithDescription("Duration of single-file lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesFound, err = meter.Int64Histogram(
			"scsslint_lint_issues_found",
			metric.WithDescription("Number of issues found per linted file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		errorsFound, err = meter.Int64Counter(
			"scsslint_lint_errors_found_total",
			metric.WithDescription("Total number of lint errors found"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		warningsFound, err = meter.Int64Counter(
			"scsslint_lint_warnings_found_total",
			metric.WithDescription("Total number of lint warnings found"),
		)
	})
	return metricsErr
}

func startLintSpan(ctx context.Context, files int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "scsslint.lint",
		trace.WithAttributes(attribute.Int("lint.file_count", files)),
	)
}

func recordLintMetrics(ctx context.Context, duration time.Duration, errorCount, warningCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	lintLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
	if !success {
		return
	}
	issuesFound.Record(ctx, int64(errorCount+warningCount))
	errorsFound.Add(ctx, int64(errorCount))
	warningsFound.Add(ctx, int64(warningCount))
}
