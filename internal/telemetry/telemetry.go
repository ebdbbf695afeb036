// Package telemetry wraps unit dispatch in an OpenTelemetry span,
// grounded on oriys-nova/internal/observability/telemetry.go's
// Init/Provider pattern, trimmed to the one thing the scheduler core
// needs instrumented: xstream.Runner.RunUnit.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/xstreamrt/xstreamrt/internal/unit"
	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// Config mirrors the teacher's telemetry.Config, trimmed to the one
// exporter this module wires (OTLP/HTTP); a disabled config yields a
// no-op tracer so callers never need a nil check.
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Provider wraps the TracerProvider lifecycle.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Init builds a Provider. With cfg.Enabled false it returns one backed
// by trace.NewNoopTracerProvider, matching the teacher's disabled path.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: trace.NewNoopTracerProvider().Tracer("")}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry.Init: create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, tracer: tp.Tracer(cfg.ServiceName)}, nil
}

// Shutdown flushes and stops the tracer provider, a no-op when
// telemetry was disabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// InstrumentRunner wraps r so every dispatch runs inside a
// "pool.dispatch" span carrying the source pool index and unit kind as
// attributes.
func (p *Provider) InstrumentRunner(r xstream.Runner) xstream.Runner {
	return xstream.RunnerFunc(func(ctx context.Context, u unit.Unit, sourcePoolIndex int) error {
		ctx, span := p.tracer.Start(ctx, "pool.dispatch")
		defer span.End()
		span.SetAttributes(
			attribute.Int("pool.index", sourcePoolIndex),
			attribute.String("unit.kind", u.Kind().String()),
		)
		return r.RunUnit(ctx, u, sourcePoolIndex)
	})
}
