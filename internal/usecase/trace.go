package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
)

var usecaseTracer = otel.Tracer("clublocker/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan only creates child spans. CLI runs and untraced routes
// have no parent and get a no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func startDatasetSpan(ctx context.Context, kind snapshot.Kind) (context.Context, trace.Span) {
	return startUsecaseSpan(ctx, "usecase.DatasetService.load", attribute.String("clublocker.dataset", string(kind)))
}

func endDatasetSpan(span trace.Span, items int, summary sweepSummary, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int("clublocker.items", items),
			attribute.Bool("clublocker.from_cache", summary.fromCache),
			attribute.Int("clublocker.gaps", summary.gaps),
			attribute.Int("clublocker.dropped", summary.dropped),
		)
	}
	span.End()
}

type sweepSummary struct {
	fromCache bool
	gaps      int
	dropped   int
}
