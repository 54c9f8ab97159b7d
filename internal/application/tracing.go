package application

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventplanner/internal/domain/entities"
)

var tracer = otel.Tracer("eventplanner/internal/application")

func startSpan(ctx context.Context, name string, key entities.EventKey) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if key != "" {
		span.SetAttributes(attribute.String("event.key", string(key)))
	}
	return ctx, span
}

// endSpan records err on span and ends it. Use with a named error return:
// defer func() { endSpan(span, err) }().
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
