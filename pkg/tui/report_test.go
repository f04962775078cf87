package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/catqa/catqa/pkg/analyze"
)

func TestRendererResult(t *testing.T) {
	res := &analyze.Result{
		Completeness: &analyze.CompletenessReport{
			ColumnCompleteness: []analyze.ColumnCompleteness{
				{Column: "description", CompletenessPct: 88, MissingCount: 12},
			},
			OverallScore: 94,
		},
		DescriptionQuality: &analyze.DescriptionReport{ValidDescriptions: 90, OverallScore: 88},
		CodeDistribution: &analyze.DistributionReport{
			CodeColumns:  []analyze.CodeColumnDistribution{{Column: "category", UniqueCodes: 6}},
			OverallScore: 48,
		},
		ClassifierReadiness: &analyze.ReadinessReport{
			PerCodeColumn: []analyze.ColumnReadiness{
				{Column: "category", ReadyForTraining: true, RecommendedTrainTestSplit: "80/20 split (recommended)"},
			},
			OverallScore: 100,
		},
		Overall: analyze.OverallScore{
			Score:        82.4,
			QualityLevel: analyze.LevelGood,
			ComponentScores: map[string]float64{
				analyze.ComponentCompleteness:        94,
				analyze.ComponentDescriptionQuality:  88,
				analyze.ComponentCodeDistribution:    48,
				analyze.ComponentClassifierReadiness: 100,
			},
		},
		CriticalIssues: []string{"10.0% of descriptions are too short"},
	}

	var buf bytes.Buffer
	NewRenderer(&buf).Result(res)
	out := buf.String()

	for _, want := range []string{
		"OVERALL", "82.4", "COMPLETENESS", "DESCRIPTIONS",
		"CODE DISTRIBUTION", "CLASSIFIER READINESS", "CRITICAL ISSUES",
		"too short", "80/20 split (recommended)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBarBounds(t *testing.T) {
	for _, score := range []float64{-5, 0, 50, 100, 150} {
		if got := bar(score); got == "" {
			t.Errorf("bar(%v) should render", score)
		}
	}
}
