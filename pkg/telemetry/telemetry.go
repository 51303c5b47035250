// Package telemetry builds the logger and tracer a world runs with. Settings come from the
// OTEL_* environment variables and can be overridden through Options.
package telemetry

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds the logger and tracer a world runs with. Build it once at startup with New and
// shut it down before exiting so buffered spans are exported.
type Telemetry struct {
	Logger      zerolog.Logger
	Tracer      trace.Tracer
	serviceName string

	shutdown func(context.Context) error
}

// New builds the telemetry from the OTEL_* environment, overridden by the non-zero fields of opts.
// When tracing is disabled Tracer is a no-op tracer.
func New(opts Options) (Telemetry, error) {
	config, err := loadConfig()
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load otel config")
	}

	options := newDefaultOptions()
	config.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid otel options")
	}

	tracer, logger, shutdown, err := setupOpenTelemetry(context.Background(), options)
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to setup telemetry")
	}

	return Telemetry{
		Logger:      logger,
		Tracer:      tracer,
		serviceName: options.ServiceName,
		shutdown:    shutdown,
	}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdown != nil {
		return t.shutdown(ctx)
	}
	return nil
}

// GetLogger returns a logger tagged with "<service>.<component>".
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.loggerContext(component).Logger()
}

// GetLoggerWithTrace is GetLogger plus the trace and span IDs of the span in ctx. It's meant to
// be the logger of a world's systems (see ecs.WithSystemLogger), so that system and hook logs can
// be joined with the system's span. Spans dropped by the sampler still carry valid IDs and are
// tagged too.
func (t *Telemetry) GetLoggerWithTrace(ctx context.Context, component string) zerolog.Logger {
	logger := t.loggerContext(component)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Bool("trace_sampled", sc.IsSampled())
	}
	return logger.Logger()
}

func (t *Telemetry) loggerContext(component string) zerolog.Context {
	return t.Logger.With().Str("component", t.serviceName+"."+component)
}
