package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
	"tribocli/internal/exporter"
	"tribocli/internal/files"
	"tribocli/internal/infrastructure"
	"tribocli/pkg/contracts/domain"
)

// Stage names used for spans and metrics
const (
	StageClassify  = "classify"
	StageParse     = "parse"
	StageCombine   = "combine"
	StageAggregate = "aggregate"
	StageEmit      = "emit"
)

// Processor runs the aggregation pipeline over one input root:
// classify, parse, combine per experiment series, aggregate per resolution, emit.
// Nothing is written unless every stage before the emitter succeeded.
type Processor struct {
	cfg        *config.Config
	paths      *config.Paths
	discovery  *files.Discovery
	classifier *files.Classifier
	parser     *Parser
	writer     *exporter.TableWriter
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
}

// ProcessorOption customises a Processor
type ProcessorOption func(*Processor)

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) ProcessorOption {
	return func(p *Processor) {
		p.tracer = tracer
	}
}

// WithMetrics sets the instruments recorded during a run
func WithMetrics(metrics *infrastructure.PipelineMetrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

// NewProcessor creates a processor for a validated configuration and its resolved paths
func NewProcessor(cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts ...ProcessorOption) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parserOpts, err := ParserOptionsFromConfig(cfg.Parser)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:        cfg,
		paths:      paths,
		discovery:  files.NewDiscovery(paths.InputDir, cfg.Pipeline.NestedDirs, logger),
		classifier: files.NewClassifier(cfg.Naming, logger),
		parser:     NewParser(parserOpts, logger),
		writer:     exporter.NewTableWriter(paths.OutputDir, exporter.WriteOptionsFromConfig(cfg), logger),
		logger:     infrastructure.WithComponent(logger, "processor"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.tracer == nil {
		p.tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	if p.metrics == nil {
		metrics, err := infrastructure.NewPipelineMetrics(noop.NewMeterProvider().Meter(infrastructure.MeterName))
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		p.metrics = metrics
	}

	return p, nil
}

// ClassificationReport lists the classified and ignored files of the input root
type ClassificationReport struct {
	Experiments []string
	Files       []domain.RawFile
	Ignored     []files.IgnoredFile
}

// RunReport summarises a completed run
type RunReport struct {
	RunID       string
	Experiments int
	Files       int
	Ignored     int
	Results     []domain.AggregateResult
	Metadata    []domain.ExperimentMetadata
	Artifacts   []string
	Duration    time.Duration
}

// Classify discovers the experiment directories and classifies their files
func (p *Processor) Classify(ctx context.Context) (*ClassificationReport, error) {
	var report *ClassificationReport
	err := p.stage(ctx, StageClassify, func(ctx context.Context) error {
		var err error
		report, err = p.classify(ctx)
		return err
	})
	return report, err
}

func (p *Processor) classify(ctx context.Context) (*ClassificationReport, error) {
	experiments, err := p.discovery.ListExperiments()
	if err != nil {
		return nil, err
	}

	report := &ClassificationReport{}
	for _, exp := range experiments {
		entries, err := p.discovery.ListExperimentFiles(exp.Path)
		if err != nil {
			return nil, err
		}
		result, err := p.classifier.Classify(exp.Name, entries)
		if err != nil {
			return nil, err
		}

		report.Experiments = append(report.Experiments, exp.Name)
		report.Files = append(report.Files, result.Files...)
		report.Ignored = append(report.Ignored, result.Ignored...)

		for _, f := range result.Files {
			p.metrics.FilesClassified.Add(ctx, 1, infrastructure.ResolutionAttr(f.Resolution.String()))
		}
		for _, f := range result.Ignored {
			p.metrics.FilesIgnored.Add(ctx, 1, infrastructure.MetricAttr("reason", f.Reason))
		}
	}

	if err := checkBaseParts(report.Files); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "Classified input",
		slog.Int("experiments", len(report.Experiments)),
		slog.Int("files", len(report.Files)),
		slog.Int("ignored", len(report.Ignored)))

	return report, nil
}

// Run executes the whole pipeline
func (p *Processor) Run(ctx context.Context) (*RunReport, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run_id", infrastructure.GetRunID(ctx)),
		attribute.String("input_dir", p.paths.InputDir),
	))
	defer span.End()

	p.logger.InfoContext(ctx, "Starting run",
		slog.String("input_dir", p.paths.InputDir),
		slog.String("output_dir", p.paths.OutputDir),
		slog.Int("workers", p.workers()),
		slog.String("trace_id", infrastructure.TraceIDFromContext(ctx)))

	report, err := p.run(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			p.logger.ErrorContext(ctx, "Run failed", append(appErr.LogAttrs(), slog.String("error", err.Error()))...)
		} else {
			p.logger.ErrorContext(ctx, "Run failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	report.RunID = infrastructure.GetRunID(ctx)
	report.Duration = time.Since(start)

	p.logger.InfoContext(ctx, "Run complete",
		slog.Int("experiments", report.Experiments),
		slog.Int("files", report.Files),
		slog.Any("artifacts", report.Artifacts),
		slog.Duration("duration", report.Duration))

	return report, nil
}

func (p *Processor) run(ctx context.Context) (*RunReport, error) {
	classified, err := p.Classify(ctx)
	if err != nil {
		return nil, err
	}

	var parsed []*ParsedFile
	if err := p.stage(ctx, StageParse, func(ctx context.Context) error {
		parsed, err = p.parseAll(ctx, classified.Files)
		return err
	}); err != nil {
		return nil, err
	}

	var tables []domain.ExperimentTable
	if err := p.stage(ctx, StageCombine, func(ctx context.Context) error {
		tables, err = p.combine(ctx, classified.Files, parsed)
		return err
	}); err != nil {
		return nil, err
	}

	var results []domain.AggregateResult
	_ = p.stage(ctx, StageAggregate, func(ctx context.Context) error {
		results = p.aggregate(ctx, tables)
		return nil
	})

	var metadata []domain.ExperimentMetadata
	if p.cfg.Output.Metadata {
		metadata = p.collectMetadata(classified.Files, parsed)
	}

	report := &RunReport{
		Experiments: len(classified.Experiments),
		Files:       len(classified.Files),
		Ignored:     len(classified.Ignored),
		Results:     results,
		Metadata:    metadata,
	}

	if err := p.stage(ctx, StageEmit, func(ctx context.Context) error {
		report.Artifacts, err = p.emit(ctx, results, metadata)
		return err
	}); err != nil {
		return nil, err
	}

	return report, nil
}

// parseAll parses every classified file with a bounded number of workers.
// Results are stored by position so their order does not depend on scheduling.
func (p *Processor) parseAll(ctx context.Context, raws []domain.RawFile) ([]*ParsedFile, error) {
	results := make([]*ParsedFile, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			parsed, err := p.parser.ParseFile(raw.Path)
			resAttr := infrastructure.ResolutionAttr(raw.Resolution.String())
			p.metrics.ParseDuration.Record(gctx, time.Since(start).Seconds(), resAttr)
			if err != nil {
				return err
			}

			p.metrics.RowsParsed.Add(gctx, int64(parsed.Table.Len()), resAttr)
			p.metrics.MissingValues.Add(gctx, int64(parsed.MissingValues), resAttr)
			results[i] = parsed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// combine concatenates the parts of every experiment series and resolution
func (p *Processor) combine(ctx context.Context, raws []domain.RawFile, parsed []*ParsedFile) ([]domain.ExperimentTable, error) {
	var order []string
	groups := make(map[string][]PartTable)
	for i, raw := range raws {
		key := raw.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], PartTable{File: raw, Table: parsed[i].Table})
	}

	tables := make([]domain.ExperimentTable, 0, len(order))
	for _, key := range order {
		parts := groups[key]
		table, err := CombineParts(parts)
		if err != nil {
			return nil, err
		}

		base := parts[0].File
		p.logger.DebugContext(ctx, "Combined experiment series",
			slog.String("experiment", base.ExperimentID),
			slog.String("series", base.Series),
			slog.String("resolution", base.Resolution.String()),
			slog.Int("parts", len(parts)),
			slog.Int("rows", table.Len()))

		tables = append(tables, domain.ExperimentTable{
			ExperimentID: base.ExperimentID,
			Series:       base.Series,
			Resolution:   base.Resolution,
			Table:        table,
		})
	}
	return tables, nil
}

// aggregate builds the aggregate table of every resolution
func (p *Processor) aggregate(ctx context.Context, tables []domain.ExperimentTable) []domain.AggregateResult {
	results := make([]domain.AggregateResult, 0, len(domain.AllResolutions()))
	for _, res := range domain.AllResolutions() {
		result := Aggregate(res, tables, p.logger)

		if n := len(result.Conflicts); n > 0 {
			p.metrics.JoinConflicts.Add(ctx, int64(n), infrastructure.ResolutionAttr(res.String()))
			warn := apperrors.NewJoinConflictError(res.String(), n)
			p.logger.WarnContext(ctx, warn.Message, warn.LogAttrs()...)
		}

		p.logger.InfoContext(ctx, "Aggregated resolution",
			slog.String("resolution", res.String()),
			slog.Int("sources", len(result.Sources)),
			slog.Int("rows", result.Table.Len()),
			slog.Int("columns", len(result.Table.Columns)))

		results = append(results, result)
	}
	return results
}

// collectMetadata extracts the preamble metadata of every experiment from its
// first base minutes file
func (p *Processor) collectMetadata(raws []domain.RawFile, parsed []*ParsedFile) []domain.ExperimentMetadata {
	var metadata []domain.ExperimentMetadata
	seen := make(map[string]bool)
	for i, raw := range raws {
		if seen[raw.ExperimentID] || raw.Resolution != domain.ResolutionMinutes || raw.PartIndex != 0 {
			continue
		}
		seen[raw.ExperimentID] = true
		metadata = append(metadata, p.parser.ExtractMetadata(raw.ExperimentID, parsed[i]))
	}
	return metadata
}

// emit writes the artifacts; both table artifacts are always produced
func (p *Processor) emit(ctx context.Context, results []domain.AggregateResult, metadata []domain.ExperimentMetadata) ([]string, error) {
	if err := p.paths.EnsureOutputDir(); err != nil {
		return nil, apperrors.NewStorageError(p.paths.OutputDir, "failed to create output directory", err)
	}

	var artifacts []string
	for _, result := range results {
		path, err := p.writer.WriteTable(result.Resolution, result.Table)
		if err != nil {
			return artifacts, err
		}
		p.metrics.RowsEmitted.Add(ctx, int64(result.Table.Len()), infrastructure.ResolutionAttr(result.Resolution.String()))
		artifacts = append(artifacts, path)
	}

	if p.cfg.Output.Summary {
		for _, result := range results {
			if result.Resolution != domain.ResolutionSeconds {
				continue
			}
			summaries, err := Summarize(result.Table)
			if err != nil {
				return artifacts, apperrors.NewAppError(apperrors.ErrTypeValidation, "failed to summarize seconds data", err)
			}
			path, err := p.writer.WriteSummary(summaries)
			if err != nil {
				return artifacts, err
			}
			artifacts = append(artifacts, path)
		}
	}

	if p.cfg.Output.Metadata {
		path, err := p.writer.WriteMetadata(metadata)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, path)
	}

	return artifacts, nil
}

// stage runs fn inside a span and records its duration and outcome
func (p *Processor) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

// workers returns the parse concurrency
func (p *Processor) workers() int {
	if p.cfg.Pipeline.Workers > 0 {
		return p.cfg.Pipeline.Workers
	}
	return runtime.NumCPU()
}

// checkBaseParts fails when an experiment series has continuation files but no base file
func checkBaseParts(raws []domain.RawFile) error {
	var order []string
	groups := make(map[string][]domain.RawFile)
	for _, raw := range raws {
		key := raw.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], raw)
	}

	for _, key := range order {
		hasBase := false
		paths := make([]string, 0, len(groups[key]))
		for _, raw := range groups[key] {
			paths = append(paths, raw.Path)
			if raw.PartIndex == 0 {
				hasBase = true
			}
		}
		if !hasBase {
			first := groups[key][0]
			return apperrors.NewMissingBaseError(fmt.Sprintf("%s/%s", first.Label(), first.Resolution), paths)
		}
	}
	return nil
}
