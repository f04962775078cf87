package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// WriteCSV flattens the result into section/metric/value records. Nested
// per-column records keep their column name in the metric path so the file
// stays a plain two-dimensional table.
func WriteCSV(w io.Writer, result *analyze.Result) error {
	cw := csv.NewWriter(w)
	rows := flatten(result)

	if err := cw.Write([]string{"section", "metric", "value"}); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write CSV header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write CSV record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to flush CSV report")
	}
	return nil
}

func flatten(r *analyze.Result) [][]string {
	var rows [][]string
	add := func(section, metric string, value any) {
		rows = append(rows, []string{section, metric, render(value)})
	}

	add("dataset", "total_rows", r.DatasetInfo.TotalRows)
	add("dataset", "total_columns", r.DatasetInfo.TotalColumns)
	add("dataset", "product_id_column", r.DatasetInfo.ProductIDColumn)
	add("dataset", "description_column", r.DatasetInfo.DescriptionColumn)
	for _, c := range r.DatasetInfo.CodeColumns {
		add("dataset", "code_column", c)
	}

	if c := r.Completeness; c != nil {
		add("completeness", "overall_score", c.OverallScore)
		for _, col := range c.ColumnCompleteness {
			add("completeness", col.Column+".completeness_pct", col.CompletenessPct)
			add("completeness", col.Column+".missing_count", col.MissingCount)
		}
		add("completeness", "rows_all_codes_present", c.RowCompleteness.AllCodesPresent)
		add("completeness", "rows_no_codes_present", c.RowCompleteness.NoCodesPresent)
		add("completeness", "rows_partial_codes", c.RowCompleteness.PartialCodes)
		add("completeness", "avg_codes_per_row", c.RowCompleteness.AvgCodesPerRow)
	}

	if d := r.DescriptionQuality; d != nil {
		add("description_quality", "overall_score", d.OverallScore)
		add("description_quality", "valid_descriptions", d.ValidDescriptions)
		add("description_quality", "length_mean", d.LengthStats.Mean)
		add("description_quality", "length_median", d.LengthStats.Median)
		add("description_quality", "length_min", d.LengthStats.Min)
		add("description_quality", "length_max", d.LengthStats.Max)
		add("description_quality", "length_std", d.LengthStats.Std)
		add("description_quality", "unique_words", d.Vocabulary.UniqueWords)
		add("description_quality", "total_words", d.Vocabulary.TotalWords)
		add("description_quality", "vocabulary_richness", d.Vocabulary.VocabularyRichness)
		add("description_quality", "too_short", d.QualityFlags.TooShort)
		add("description_quality", "too_short_pct", d.QualityFlags.TooShortPct)
		add("description_quality", "mostly_numeric", d.QualityFlags.MostlyNumeric)
		add("description_quality", "high_special_chars", d.QualityFlags.HighSpecialChars)
		add("description_quality", "duplicate_groups", d.Duplicates.DuplicateCount)
		add("description_quality", "duplicate_rows", d.Duplicates.TotalDuplicateRows)
	}

	if cd := r.CodeDistribution; cd != nil {
		add("code_distribution", "overall_score", cd.OverallScore)
		for _, col := range cd.CodeColumns {
			add("code_distribution", col.Column+".unique_codes", col.UniqueCodes)
			add("code_distribution", col.Column+".entropy", col.DistributionEntropy)
			add("code_distribution", col.Column+".top_code_concentration", col.TopCodeConcentration)
			add("code_distribution", col.Column+".rare_codes_count", col.RareCodesCount)
		}
	}

	if cr := r.ClassifierReadiness; cr != nil {
		add("classifier_readiness", "overall_score", cr.OverallScore)
		add("classifier_readiness", "columns_ready", cr.TrainingViability.ColumnsReady)
		add("classifier_readiness", "columns_not_ready", cr.TrainingViability.ColumnsNotReady)
		add("classifier_readiness", "readiness_pct", cr.TrainingViability.ReadinessPct)
		for _, col := range cr.PerCodeColumn {
			add("classifier_readiness", col.Column+".status", col.Status)
			add("classifier_readiness", col.Column+".unique_classes", col.UniqueClasses)
			add("classifier_readiness", col.Column+".class_imbalance_ratio", col.ClassImbalanceRatio)
			add("classifier_readiness", col.Column+".ready_for_training", col.ReadyForTraining)
			add("classifier_readiness", col.Column+".recommended_split", col.RecommendedTrainTestSplit)
		}
	}

	add("overall", "overall_score", r.Overall.Score)
	add("overall", "quality_level", r.Overall.QualityLevel)
	for _, name := range analyze.ComponentNames() {
		add("overall", "component."+name, r.Overall.ComponentScores[name])
	}
	for _, issue := range r.CriticalIssues {
		add("overall", "critical_issue", issue)
	}

	return rows
}

func render(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
