// Package analyze implements the catalog quality analysis engine: four
// independent statistical analyzers (completeness, description quality,
// code distribution, classifier readiness) and a weighted score aggregator.
//
// Analyzers read a shared immutable dataset snapshot and write disjoint
// result structures, so the driver fans them out concurrently and joins
// before aggregation. All result types serialize to a plain tree of
// native numbers, strings, booleans and ordered sequences.
package analyze

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// Component names. These are the keys of the weight mapping and of the
// per-component score map in the aggregated result.
const (
	ComponentCompleteness        = "completeness"
	ComponentDescriptionQuality  = "description_quality"
	ComponentCodeDistribution    = "code_distribution"
	ComponentClassifierReadiness = "classifier_readiness"
)

// ComponentNames returns all component names in aggregation order.
func ComponentNames() []string {
	return []string{
		ComponentCompleteness,
		ComponentDescriptionQuality,
		ComponentCodeDistribution,
		ComponentClassifierReadiness,
	}
}

// Params holds the tunable analysis thresholds and score weights.
// The zero value is not usable; start from DefaultParams.
type Params struct {
	// MinDescriptionLength is the character count below which a
	// description is flagged too short.
	MinDescriptionLength int

	// MinTrainingSamples is the minimum class size for a class to count
	// as having sufficient training data.
	MinTrainingSamples int

	// RareCodeThreshold is the fraction of total rows below which a code
	// value is considered rare.
	RareCodeThreshold float64

	// Weights maps component names to their share of the overall score.
	// Must cover exactly the four components and sum to 1.0.
	Weights map[string]float64
}

// DefaultParams returns the standard thresholds and weights.
func DefaultParams() Params {
	return Params{
		MinDescriptionLength: 20,
		MinTrainingSamples:   50,
		RareCodeThreshold:    0.005,
		Weights: map[string]float64{
			ComponentCompleteness:        0.30,
			ComponentDescriptionQuality:  0.30,
			ComponentCodeDistribution:    0.20,
			ComponentClassifierReadiness: 0.20,
		},
	}
}

// DatasetInfo describes the analyzed dataset and resolved column roles.
type DatasetInfo struct {
	TotalRows         int      `json:"total_rows"`
	TotalColumns      int      `json:"total_columns"`
	ProductIDColumn   string   `json:"product_id_column"`
	DescriptionColumn string   `json:"description_column"`
	CodeColumns       []string `json:"code_columns"`
}

// Result is the terminal artifact of an analysis run: each analyzer's full
// record under a stable key, the aggregated overall record, and the capped
// critical-issue list.
type Result struct {
	DatasetInfo         DatasetInfo         `json:"dataset_info"`
	Completeness        *CompletenessReport `json:"completeness"`
	DescriptionQuality  *DescriptionReport  `json:"description_quality"`
	CodeDistribution    *DistributionReport `json:"code_distribution"`
	ClassifierReadiness *ReadinessReport    `json:"classifier_readiness"`
	Overall             OverallScore        `json:"overall"`
	CriticalIssues      []string            `json:"critical_issues"`
}

// Analyzer drives the four analyzers and the aggregator over one dataset.
type Analyzer struct {
	params Params
	tracer trace.Tracer
}

// New creates an analyzer with the given parameters.
func New(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// WithTracer enables span emission around each analysis stage.
func (a *Analyzer) WithTracer(t trace.Tracer) *Analyzer {
	a.tracer = t
	return a
}

// Analyze runs all four analyzers concurrently over the dataset, then
// aggregates their scores. The dataset is never mutated. Fatal failures
// (empty dataset, missing required column, invalid weights) abort the run
// with no partial result.
func (a *Analyzer) Analyze(ctx context.Context, ds *model.Dataset, roles model.Roles) (*Result, error) {
	if err := ValidateWeights(a.params.Weights); err != nil {
		return nil, err
	}
	if ds == nil || ds.NumRows() == 0 || ds.NumColumns() == 0 {
		return nil, qaerrors.EmptyDataset()
	}
	if err := checkColumns(ds, roles); err != nil {
		return nil, err
	}

	result := &Result{
		DatasetInfo: DatasetInfo{
			TotalRows:         ds.NumRows(),
			TotalColumns:      ds.NumColumns(),
			ProductIDColumn:   roles.ID,
			DescriptionColumn: roles.Description,
			CodeColumns:       roles.Codes,
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer a.span(gctx, "analyze.completeness")()
		result.Completeness = AnalyzeCompleteness(ds, roles)
		return nil
	})
	g.Go(func() error {
		defer a.span(gctx, "analyze.description_quality")()
		result.DescriptionQuality = AnalyzeDescriptionQuality(ds, roles.Description, a.params.MinDescriptionLength)
		return nil
	})
	g.Go(func() error {
		defer a.span(gctx, "analyze.code_distribution")()
		result.CodeDistribution = AnalyzeCodeDistribution(gctx, ds, roles.Codes, a.params.RareCodeThreshold)
		return nil
	})
	g.Go(func() error {
		defer a.span(gctx, "analyze.classifier_readiness")()
		result.ClassifierReadiness = AnalyzeClassifierReadiness(ds, roles.Description, roles.Codes, a.params.MinTrainingSamples)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeAnalysisFailed, "analysis aborted")
	}

	overall, err := Aggregate(result, a.params.Weights)
	if err != nil {
		return nil, err
	}
	result.Overall = overall
	result.CriticalIssues = CriticalIssues(result)

	return result, nil
}

// span starts a stage span when tracing is enabled and returns its closer.
func (a *Analyzer) span(ctx context.Context, name string) func() {
	if a.tracer == nil {
		return func() {}
	}
	_, sp := a.tracer.Start(ctx, name)
	return func() { sp.End() }
}

// checkColumns verifies that every role-assigned column exists in the
// dataset. Absence is an input-contract violation, never silently skipped.
func checkColumns(ds *model.Dataset, roles model.Roles) error {
	required := make([]string, 0, len(roles.Codes)+2)
	required = append(required, roles.ID, roles.Description)
	required = append(required, roles.Codes...)

	for _, col := range required {
		if col == "" || !ds.HasColumn(col) {
			return qaerrors.MissingColumn(col, ds.Columns())
		}
	}
	return nil
}
