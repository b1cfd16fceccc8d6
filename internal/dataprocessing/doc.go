// Package dataprocessing turns classified raw files into the aggregate
// measurement tables.
//
// # Architecture
//
// The package is organized into the stages of one pipeline run:
//
// 1. Parser: reads a delimited DASYLab export into a time-indexed table
// 2. CombineParts: concatenates the continuation parts of one experiment series
// 3. Aggregate: merges all experiment tables of one resolution
// 4. Processor: runs classification, parsing, combination, aggregation and emission
//
// Summarize and ExtractMetadata provide the optional summary statistics and
// experiment metadata artifacts.
//
// # Usage
//
//	processor, err := dataprocessing.NewProcessor(cfg, paths, logger,
//	    dataprocessing.WithTracer(telemetry.Tracer),
//	    dataprocessing.WithMetrics(metrics))
//	if err != nil {
//	    return err
//	}
//	report, err := processor.Run(ctx)
//
// # Concurrency
//
// Files are parsed concurrently with a bounded worker count. Results are kept
// in classification order, so the output does not depend on scheduling.
package dataprocessing
