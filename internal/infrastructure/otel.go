package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
)

// MeterName is the instrumentation scope of tracer and meter
const MeterName = "tribocli"

// Telemetry holds the OpenTelemetry providers of one run. Metrics are
// collected into a private Prometheus registry that is dumped to a textfile
// on shutdown when a metrics file is configured.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Logger         *slog.Logger

	traceFile   *os.File
	metricsFile string
}

// InitializeTelemetry sets up tracing and metrics. Spans are exported to the
// configured trace file; without one they are recorded but not exported.
func InitializeTelemetry(cfg config.TelemetryConfig, version string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = config.AppName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	)

	t := &Telemetry{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	// Tracing
	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f), stdouttrace.WithPrettyPrint())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	t.TracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(version))

	// Metrics
	t.Registry = promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(t.Registry))
	if err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(version))

	logger.Debug("Telemetry initialized",
		slog.String("service", serviceName),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// WriteMetricsTextfile dumps the current metrics in Prometheus text format
func (t *Telemetry) WriteMetricsTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown flushes spans, writes the metrics textfile if configured and
// releases the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.metricsFile != "" {
		if err := t.WriteMetricsTextfile(t.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
	}
	if err := t.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("trace file close: %w", err))
	}

	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}

// PipelineMetrics holds the instruments recorded by a pipeline run
type PipelineMetrics struct {
	FilesClassified metric.Int64Counter
	FilesIgnored    metric.Int64Counter
	RowsParsed      metric.Int64Counter
	MissingValues   metric.Int64Counter
	JoinConflicts   metric.Int64Counter
	RowsEmitted     metric.Int64Counter
	StageErrors     metric.Int64Counter
	ParseDuration   metric.Float64Histogram
	StageDuration   metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on the meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var m PipelineMetrics
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.FilesClassified, "tribo_files_classified", "Raw files classified, by resolution"},
		{&m.FilesIgnored, "tribo_files_ignored", "Files skipped by the classifier, by reason"},
		{&m.RowsParsed, "tribo_rows_parsed", "Data rows read from raw files, by resolution"},
		{&m.MissingValues, "tribo_missing_values", "Cells read as missing values, by resolution"},
		{&m.JoinConflicts, "tribo_join_conflicts", "Cells two sources disagree on, by resolution"},
		{&m.RowsEmitted, "tribo_rows_emitted", "Rows written to the output tables, by resolution"},
		{&m.StageErrors, "tribo_stage_errors", "Fatal errors, by stage and error type"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if m.ParseDuration, err = meter.Float64Histogram(
		"tribo_parse_duration_seconds",
		metric.WithDescription("Time to parse one raw file"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram(
		"tribo_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordStage records the duration and outcome of one pipeline stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))

	if err != nil {
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error.type", apperrors.TypeOf(err)),
		))
	}
}

// MetricAttr returns a measurement option carrying one string attribute
func MetricAttr(key, value string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(key, value))
}

// ResolutionAttr returns the metric option tagging a resolution
func ResolutionAttr(res string) metric.MeasurementOption {
	return MetricAttr("resolution", res)
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
