package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/rentiq/internal/adapter/otel"

// TracingDirectory wraps a domain.TenantDirectory with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingDirectory struct {
	next   domain.TenantDirectory
	tracer trace.Tracer
}

// Compile-time check: TracingDirectory implements domain.TenantDirectory.
var _ domain.TenantDirectory = (*TracingDirectory)(nil)

// NewTracingDirectory creates a tracing decorator around the given directory.
func NewTracingDirectory(next domain.TenantDirectory) *TracingDirectory {
	return &TracingDirectory{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (d *TracingDirectory) List(ctx context.Context) ([]domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.List")
	defer span.End()

	tenants, err := d.next.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(tenants)))
	}
	return tenants, err
}

func (d *TracingDirectory) Get(ctx context.Context, id string) (domain.Tenant, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Get",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	tenant, err := d.next.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return tenant, err
}

func (d *TracingDirectory) Create(ctx context.Context, tenant domain.Tenant) (string, error) {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Create",
		trace.WithAttributes(attribute.String("tenant.property_id", tenant.PropertyID)),
	)
	defer span.End()

	id, err := d.next.Create(ctx, tenant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("tenant.id", id))
	}
	return id, err
}

func (d *TracingDirectory) Patch(ctx context.Context, id string, fields map[string]any) error {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Patch",
		trace.WithAttributes(
			attribute.String("tenant.id", id),
			attribute.Int("patch.fields", len(fields)),
		),
	)
	defer span.End()

	err := d.next.Patch(ctx, id, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (d *TracingDirectory) SetStatus(ctx context.Context, id string, status domain.Status) error {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.SetStatus",
		trace.WithAttributes(
			attribute.String("tenant.id", id),
			attribute.String("tenant.status", string(status)),
		),
	)
	defer span.End()

	err := d.next.SetStatus(ctx, id, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (d *TracingDirectory) Delete(ctx context.Context, id string) error {
	ctx, span := d.tracer.Start(ctx, "TenantDirectory.Delete",
		trace.WithAttributes(attribute.String("tenant.id", id)),
	)
	defer span.End()

	err := d.next.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
