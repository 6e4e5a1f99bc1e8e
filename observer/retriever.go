package observer

import (
	"context"
	"time"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedRetriever wraps an advisor.Retriever with OTEL instrumentation.
type ObservedRetriever struct {
	inner advisor.Retriever
	inst  *Instruments
}

var _ advisor.Retriever = (*ObservedRetriever)(nil)

// WrapRetriever returns an instrumented retriever.
func WrapRetriever(inner advisor.Retriever, inst *Instruments) *ObservedRetriever {
	return &ObservedRetriever{inner: inner, inst: inst}
}

func (o *ObservedRetriever) Retrieve(ctx context.Context, query string) ([]advisor.RetrievedPassage, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "retrieval.search", trace.WithAttributes(
		AttrQueryLength.Int(len(query)),
	))
	defer span.End()
	start := time.Now()

	passages, err := o.inner.Retrieve(ctx, query)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	topScore := float64(0)
	if len(passages) > 0 {
		topScore = float64(passages[0].Score)
	}
	span.SetAttributes(
		AttrRetrievedCount.Int(len(passages)),
		AttrRetrievalTopScore.Float64(topScore),
	)

	o.inst.RetrievalRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	o.inst.RetrievalDuration.Record(ctx, durationMs)
	o.inst.RetrievalResults.Record(ctx, int64(len(passages)))

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("retrieval completed"))
	rec.AddAttributes(
		otellog.Int("retrieval.query_length", len(query)),
		otellog.Int("retrieval.result_count", len(passages)),
		otellog.Float64("retrieval.top_score", topScore),
		otellog.Float64("retrieval.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return passages, err
}
