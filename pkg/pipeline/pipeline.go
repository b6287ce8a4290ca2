// Package pipeline provides the analysis pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Load: obtain a metadata snapshot from a [metadata.Source], build the
//     dependency graph and annotate depths
//  2. Analyze: compute the summary report (duplicates, cycles, sizes)
//  3. Enrich: optionally run the external cargo checks
//
// # Usage
//
//	runner := pipeline.NewRunner(src, cache, nil, logger)
//	result, err := runner.Analyze(ctx, pipeline.Options{Enrich: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.TotalDependencies)
//
// Load only:
//
//	g, err := runner.Load(ctx, pipeline.Options{})
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/treasuremap/pkg/analysis"
	"github.com/matzehuels/treasuremap/pkg/enrich"
	"github.com/matzehuels/treasuremap/pkg/graph"
)

// DefaultTopN is the default number of entries in the largest-packages list.
const DefaultTopN = analysis.DefaultTopN

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export formats. JSON is shared with the report formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidReportFormats is the set of supported report formats.
var ValidReportFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
}

// ValidExportFormats is the set of supported graph export formats.
var ValidExportFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// Options configures a pipeline run.
type Options struct {
	// MatchRequirements resolves dependency edges by name and version
	// requirement instead of by name alone.
	MatchRequirements bool `json:"match_requirements,omitempty"`
	// TopN bounds the largest-packages list. Zero means DefaultTopN.
	TopN int `json:"top_n,omitempty"`
	// Enrich runs the external cargo checks after analysis.
	Enrich bool `json:"enrich,omitempty"`
	// Refresh bypasses cached metadata.
	Refresh bool `json:"refresh,omitempty"`

	// SizeFunc overrides source size estimation. Nil means graph.StatSize.
	SizeFunc graph.SizeFunc `json:"-"`
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
}

func (o Options) buildOptions() []graph.BuildOption {
	var opts []graph.BuildOption
	if o.MatchRequirements {
		opts = append(opts, graph.WithRequirementMatching())
	}
	if o.SizeFunc != nil {
		opts = append(opts, graph.WithSizeFunc(o.SizeFunc))
	}
	return opts
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the annotated dependency graph.
	Graph *graph.Graph

	// Report is the analysis summary. Report.Enrichment is set only when
	// enrichment was requested.
	Report *analysis.Report

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	EnrichTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MetadataHit bool // Whether the metadata snapshot came from cache
}

// Enricher runs the external checks. [enrich.Checker] implements it.
type Enricher interface {
	CheckAll(ctx context.Context) enrich.Results
}

// Fingerprinter is implemented by sources whose snapshots can be cached.
// The fingerprint must change whenever the snapshot could.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// ValidateReportFormat checks that a report format is valid.
func ValidateReportFormat(format string) error {
	if !ValidReportFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: text, json, yaml)", format)
	}
	return nil
}

// ValidateExportFormat checks that an export format is valid.
func ValidateExportFormat(format string) error {
	if !ValidExportFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}
