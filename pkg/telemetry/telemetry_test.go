package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestParseLogFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want LogFormat
	}{
		{in: "json", want: LogFormatJSON},
		{in: "JSON", want: LogFormatJSON},
		{in: "pretty", want: LogFormatPretty},
		{in: "", want: LogFormatUndefined},
		{in: "xml", want: LogFormatUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLogFormat(tt.in))
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	valid := func() Options {
		return Options{
			ServiceName:     "stances",
			LogLevel:        "info",
			LogFormat:       LogFormatJSON,
			TraceSampleRate: 1.0,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Options) {}},
		{name: "missing service name", mutate: func(o *Options) { o.ServiceName = "" }, wantErr: true},
		{name: "bad level", mutate: func(o *Options) { o.LogLevel = "loud" }, wantErr: true},
		{name: "undefined format", mutate: func(o *Options) { o.LogFormat = LogFormatUndefined }, wantErr: true},
		{name: "sample rate above one", mutate: func(o *Options) { o.TraceSampleRate = 1.5 }, wantErr: true},
		{name: "enabled without endpoint", mutate: func(o *Options) { o.Enabled = true }, wantErr: true},
		{name: "enabled with endpoint", mutate: func(o *Options) { o.Enabled = true; o.Endpoint = "collector:4317" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opt := valid()
			tt.mutate(&opt)
			if tt.wantErr {
				assert.Error(t, opt.validate())
			} else {
				assert.NoError(t, opt.validate())
			}
		})
	}
}

func TestOptions_ApplyOverridesNonZero(t *testing.T) {
	t.Parallel()

	opt := newDefaultOptions()
	cfg := Config{Endpoint: "localhost:4317", LogLevel: "info", LogFormat: "pretty", TraceSampleRate: 1.0}
	cfg.applyToOptions(&opt)

	opt.apply(Options{ServiceName: "stances", LogFormat: LogFormatJSON})

	assert.Equal(t, "stances", opt.ServiceName)
	assert.Equal(t, "localhost:4317", opt.Endpoint)
	assert.Equal(t, "info", opt.LogLevel)
	assert.Equal(t, LogFormatJSON, opt.LogFormat)
	assert.InDelta(t, 1.0, opt.TraceSampleRate, 0)
	require.NoError(t, opt.validate())
}

func TestNew_DisabledTracingLogsComponent(t *testing.T) {
	var buf bytes.Buffer
	tel, err := New(Options{ServiceName: "stances", LogFormat: LogFormatJSON, LogLevel: "debug", Output: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, tel.Shutdown(context.Background())) })

	logger := tel.GetLogger("world")
	logger.Debug().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stances.world", line["component"])
	assert.Equal(t, "hello", line["message"])

	_, span := tel.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestGetLoggerWithTrace(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tests := []struct {
		name      string
		withSpan  bool
		wantTrace bool
	}{
		{name: "inside a span", withSpan: true, wantTrace: true},
		{name: "without a span", withSpan: false, wantTrace: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tel := Telemetry{Logger: zerolog.New(&buf), serviceName: "stances"}

			ctx := context.Background()
			if tt.withSpan {
				var span oteltrace.Span
				ctx, span = provider.Tracer("test").Start(ctx, "ecs.system.report")
				defer span.End()
			}

			logger := tel.GetLoggerWithTrace(ctx, "system.report")
			logger.Info().Msg("report")

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, "stances.system.report", line["component"])

			sc := oteltrace.SpanContextFromContext(ctx)
			if !tt.wantTrace {
				assert.NotContains(t, line, "trace_id")
				return
			}
			assert.Equal(t, sc.TraceID().String(), line["trace_id"])
			assert.Equal(t, sc.SpanID().String(), line["span_id"])
			assert.Equal(t, true, line["trace_sampled"])
		})
	}
}
