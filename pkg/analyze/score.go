package analyze

import (
	"fmt"
	"math"

	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// weightSumTolerance is the permitted deviation of the weight sum from 1.0.
const weightSumTolerance = 1e-9

// Quality levels, ordered best to worst.
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelPoor      = "poor"
	LevelCritical  = "critical"
)

// maxCriticalIssues caps the assembled issue list.
const maxCriticalIssues = 10

// OverallScore is the aggregated quality verdict: the weighted composite
// score, its discrete level, and the per-component scores it was built from.
type OverallScore struct {
	Score           float64            `json:"overall_score"`
	QualityLevel    string             `json:"quality_level"`
	ComponentScores map[string]float64 `json:"component_scores"`
}

// ValidateWeights checks that the weight mapping covers exactly the four
// component names and sums to 1.0. A mismatched key or bad sum is a
// configuration error, never a silent zero.
func ValidateWeights(weights map[string]float64) error {
	if len(weights) != len(ComponentNames()) {
		return qaerrors.Configuration(
			fmt.Sprintf("expected %d component weights, got %d", len(ComponentNames()), len(weights)))
	}

	sum := 0.0
	for _, name := range ComponentNames() {
		w, ok := weights[name]
		if !ok {
			return qaerrors.Configuration("missing weight for component").WithContext("component", name)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > weightSumTolerance {
		return qaerrors.Configuration(
			fmt.Sprintf("component weights must sum to 1.0, got %g", sum))
	}
	return nil
}

// Aggregate combines the four analyzers' overall scores into the weighted
// composite score and quality level.
func Aggregate(result *Result, weights map[string]float64) (OverallScore, error) {
	if err := ValidateWeights(weights); err != nil {
		return OverallScore{}, err
	}

	scores := map[string]float64{
		ComponentCompleteness:        result.Completeness.OverallScore,
		ComponentDescriptionQuality:  result.DescriptionQuality.OverallScore,
		ComponentCodeDistribution:    result.CodeDistribution.OverallScore,
		ComponentClassifierReadiness: result.ClassifierReadiness.OverallScore,
	}

	weighted := 0.0
	for name, score := range scores {
		weighted += score * weights[name]
	}
	weighted = round2(weighted)

	return OverallScore{
		Score:           weighted,
		QualityLevel:    QualityLevel(weighted),
		ComponentScores: scores,
	}, nil
}

// QualityLevel maps a composite score to its discrete level. Bands are
// half-open and evaluated top-down; first match wins.
func QualityLevel(score float64) string {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 60:
		return LevelFair
	case score >= 40:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// CriticalIssues assembles the capped issue list in fixed order:
// low-completeness columns, the too-short-description warning, then the
// classifier-readiness issues. The list is truncated, never reordered.
func CriticalIssues(result *Result) []string {
	issues := []string{}

	for _, col := range result.Completeness.ColumnCompleteness {
		if col.CompletenessPct < 80 {
			issues = append(issues,
				fmt.Sprintf("Low completeness in %s: %.1f%%", col.Column, col.CompletenessPct))
		}
	}

	if result.DescriptionQuality.QualityFlags.TooShortPct > 10 {
		issues = append(issues,
			fmt.Sprintf("%.1f%% of descriptions are too short", result.DescriptionQuality.QualityFlags.TooShortPct))
	}

	issues = append(issues, result.ClassifierReadiness.DataQualityIssues...)

	if len(issues) > maxCriticalIssues {
		issues = issues[:maxCriticalIssues]
	}
	return issues
}
