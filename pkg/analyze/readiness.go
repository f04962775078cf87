package analyze

import (
	"fmt"
	"math"

	"github.com/catqa/catqa/internal/model"
)

// Column readiness statuses.
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)

// readinessClassCoverage is the minimum fraction of classes that must
// individually clear the sample floor for a column to be deemed ready.
// A heuristic constant kept for compatibility.
const readinessClassCoverage = 0.7

// Split recommendation tiers, keyed on the smallest class size relative to
// the minimum-samples threshold.
const (
	splitInsufficient = "Insufficient data - collect more samples"
	splitNinetyTen    = "90/10 split (limited data)"
	splitEightyTwenty = "80/20 split (recommended)"
	splitSeventyOrEighty = "70/30 or 80/20 split"
)

// ReadinessReport assesses each code column as a classification target.
type ReadinessReport struct {
	PerCodeColumn     []ColumnReadiness `json:"per_code_column"`
	TrainingViability TrainingViability `json:"training_viability"`
	DataQualityIssues []string          `json:"data_quality_issues"`
	OverallScore      float64           `json:"overall_score"`
}

// ColumnReadiness holds the training-viability assessment of one code
// column, computed over rows where both the description and the code are
// present. Status is insufficient_data when no such rows exist, in which
// case only Status, Column, UniqueClasses and ReadyForTraining are
// meaningful.
type ColumnReadiness struct {
	Column                    string  `json:"column"`
	Status                    string  `json:"status"`
	TotalSamples              int     `json:"total_samples"`
	UniqueClasses             int     `json:"unique_classes"`
	ClassesWithSufficientData int     `json:"classes_with_sufficient_data"`
	ClassesNeedingMoreData    int     `json:"classes_needing_more_data"`
	MinClassSize              int     `json:"min_class_size"`
	MaxClassSize              int     `json:"max_class_size"`
	MedianClassSize           int     `json:"median_class_size"`
	ClassImbalanceRatio       float64 `json:"class_imbalance_ratio"`
	AvgDescriptionUniqueness  float64 `json:"avg_description_uniqueness"`
	AmbiguousDescriptions     int     `json:"ambiguous_descriptions"`
	ReadyForTraining          bool    `json:"ready_for_training"`
	RecommendedTrainTestSplit string  `json:"recommended_train_test_split"`
}

// TrainingViability aggregates readiness across all code columns.
type TrainingViability struct {
	ColumnsReady    int     `json:"columns_ready"`
	ColumnsNotReady int     `json:"columns_not_ready"`
	ReadinessPct    float64 `json:"readiness_pct"`
}

// AnalyzeClassifierReadiness assesses every code column independently and
// aggregates the per-column verdicts. A column with zero usable rows is
// marked insufficient_data and the analysis continues for the others.
func AnalyzeClassifierReadiness(ds *model.Dataset, descriptionColumn string, codes []string, minSamples int) *ReadinessReport {
	report := &ReadinessReport{
		PerCodeColumn:     make([]ColumnReadiness, 0, len(codes)),
		DataQualityIssues: []string{},
	}

	ready := 0
	for _, col := range codes {
		cr := columnReadiness(ds, descriptionColumn, col, minSamples)
		report.PerCodeColumn = append(report.PerCodeColumn, cr)
		if cr.ReadyForTraining {
			ready++
		}

		if cr.AmbiguousDescriptions > 10 {
			report.DataQualityIssues = append(report.DataQualityIssues,
				fmt.Sprintf("%s: %d ambiguous descriptions (same text, different codes)", col, cr.AmbiguousDescriptions))
		}
		if cr.ClassImbalanceRatio > 100 {
			report.DataQualityIssues = append(report.DataQualityIssues,
				fmt.Sprintf("%s: Severe class imbalance (ratio: %.1f)", col, cr.ClassImbalanceRatio))
		}
	}

	report.TrainingViability = TrainingViability{
		ColumnsReady:    ready,
		ColumnsNotReady: len(codes) - ready,
	}
	if len(codes) > 0 {
		report.TrainingViability.ReadinessPct = round2(float64(ready) / float64(len(codes)) * 100)
	}
	report.OverallScore = report.TrainingViability.ReadinessPct

	return report
}

func columnReadiness(ds *model.Dataset, descriptionColumn, codeColumn string, minSamples int) ColumnReadiness {
	descIdx := ds.ColumnIndex(descriptionColumn)
	codeIdx := ds.ColumnIndex(codeColumn)

	// Class sizes and per-class distinct descriptions, plus the reverse
	// mapping for ambiguity detection.
	classSizes := make(map[string]int)
	classDescs := make(map[string]map[string]struct{})
	descCodes := make(map[string]map[string]struct{})

	usable := 0
	for row := 0; row < ds.NumRows(); row++ {
		descCell := ds.Cell(row, descIdx)
		codeCell := ds.Cell(row, codeIdx)
		if descCell.Null || codeCell.Null {
			continue
		}
		usable++

		code := codeCell.Raw
		desc := descCell.Raw

		classSizes[code]++
		if classDescs[code] == nil {
			classDescs[code] = make(map[string]struct{})
		}
		classDescs[code][desc] = struct{}{}

		if descCodes[desc] == nil {
			descCodes[desc] = make(map[string]struct{})
		}
		descCodes[desc][code] = struct{}{}
	}

	if usable == 0 {
		return ColumnReadiness{
			Column: codeColumn,
			Status: StatusInsufficientData,
		}
	}

	sizes := make([]int, 0, len(classSizes))
	sufficient := 0
	for _, size := range classSizes {
		sizes = append(sizes, size)
		if size >= minSamples {
			sufficient++
		}
	}
	minSize, maxSize := minMaxInt(sizes)

	uniquenessSum := 0.0
	for code, descs := range classDescs {
		uniquenessSum += float64(len(descs)) / float64(classSizes[code])
	}

	ambiguous := 0
	for _, codes := range descCodes {
		if len(codes) > 1 {
			ambiguous++
		}
	}

	return ColumnReadiness{
		Column:                    codeColumn,
		Status:                    StatusOK,
		TotalSamples:              usable,
		UniqueClasses:             len(classSizes),
		ClassesWithSufficientData: sufficient,
		ClassesNeedingMoreData:    len(classSizes) - sufficient,
		MinClassSize:              minSize,
		MaxClassSize:              maxSize,
		MedianClassSize:           int(medianFloat(sizes)),
		ClassImbalanceRatio:       round2(float64(maxSize) / float64(minSize)),
		AvgDescriptionUniqueness:  round4(uniquenessSum / float64(len(classSizes))),
		AmbiguousDescriptions:     ambiguous,
		ReadyForTraining:          float64(sufficient) >= math.Max(2, float64(len(classSizes))*readinessClassCoverage),
		RecommendedTrainTestSplit: splitRecommendation(minSize, minSamples),
	}
}

// splitRecommendation picks a train/test split policy from the smallest
// class size relative to the minimum-samples threshold.
func splitRecommendation(smallestClass, minSamples int) string {
	switch {
	case smallestClass < minSamples:
		return splitInsufficient
	case smallestClass < minSamples*2:
		return splitNinetyTen
	case smallestClass < minSamples*3:
		return splitEightyTwenty
	default:
		return splitSeventyOrEighty
	}
}
