package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// TracingMailer wraps a domain.Mailer with OpenTelemetry tracing.
type TracingMailer struct {
	next   domain.Mailer
	tracer trace.Tracer
}

// Compile-time check: TracingMailer implements domain.Mailer.
var _ domain.Mailer = (*TracingMailer)(nil)

// NewTracingMailer creates a tracing decorator around the given mailer.
func NewTracingMailer(next domain.Mailer) *TracingMailer {
	return &TracingMailer{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// Send traces one delivery. Recipient addresses stay out of span attributes;
// only the subject is recorded.
func (m *TracingMailer) Send(ctx context.Context, email domain.Email) error {
	ctx, span := m.tracer.Start(ctx, "Mailer.Send",
		trace.WithAttributes(
			attribute.String("email.subject", email.Subject),
			attribute.Bool("email.has_html", email.HTML != ""),
		),
	)
	defer span.End()

	err := m.next.Send(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
