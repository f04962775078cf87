package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// Sheet names of the generated workbook.
const (
	sheetOverview     = "Overview"
	sheetCompleteness = "Completeness"
	sheetDescriptions = "Descriptions"
	sheetDistribution = "Distribution"
	sheetReadiness    = "Readiness"
)

// WriteXLSX renders the result as a workbook with one sheet per analyzer
// plus an overview sheet. Numbers are written as native numeric cells.
func WriteXLSX(w io.Writer, result *analyze.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverviewSheet(f, result); err != nil {
		return err
	}
	if err := writeCompletenessSheet(f, result.Completeness); err != nil {
		return err
	}
	if err := writeDescriptionsSheet(f, result.DescriptionQuality); err != nil {
		return err
	}
	if err := writeDistributionSheet(f, result.CodeDistribution); err != nil {
		return err
	}
	if err := writeReadinessSheet(f, result.ClassifierReadiness); err != nil {
		return err
	}

	// The default sheet was renamed to Overview; make it active.
	idx, err := f.GetSheetIndex(sheetOverview)
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write workbook")
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to address cell")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write sheet row").
			WithContext("sheet", sheet)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, r *analyze.Result) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetOverview); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to rename sheet")
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Overall score", r.Overall.Score},
		{"Quality level", r.Overall.QualityLevel},
		{"Total rows", r.DatasetInfo.TotalRows},
		{"Total columns", r.DatasetInfo.TotalColumns},
		{"Product ID column", r.DatasetInfo.ProductIDColumn},
		{"Description column", r.DatasetInfo.DescriptionColumn},
	}
	for _, name := range analyze.ComponentNames() {
		rows = append(rows, []any{"Component: " + name, r.Overall.ComponentScores[name]})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"Critical issues"})
	for _, issue := range r.CriticalIssues {
		rows = append(rows, []any{issue})
	}

	for i, row := range rows {
		if err := setRow(f, sheetOverview, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCompletenessSheet(f *excelize.File, c *analyze.CompletenessReport) error {
	if c == nil {
		return nil
	}
	if _, err := f.NewSheet(sheetCompleteness); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to create sheet")
	}

	rows := [][]any{
		{"Column", "Non-null", "Non-empty", "Completeness %", "Missing"},
	}
	for _, col := range c.ColumnCompleteness {
		rows = append(rows, []any{col.Column, col.NonNullCount, col.NonEmptyCount, col.CompletenessPct, col.MissingCount})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"Overall score", c.OverallScore})
	rows = append(rows, []any{"Rows with all codes", c.RowCompleteness.AllCodesPresent})
	rows = append(rows, []any{"Rows with no codes", c.RowCompleteness.NoCodesPresent})
	rows = append(rows, []any{"Rows with partial codes", c.RowCompleteness.PartialCodes})
	rows = append(rows, []any{"Avg codes per row", c.RowCompleteness.AvgCodesPerRow})

	for i, row := range rows {
		if err := setRow(f, sheetCompleteness, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDescriptionsSheet(f *excelize.File, d *analyze.DescriptionReport) error {
	if d == nil {
		return nil
	}
	if _, err := f.NewSheet(sheetDescriptions); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to create sheet")
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Overall score", d.OverallScore},
		{"Valid descriptions", d.ValidDescriptions},
		{"Mean length", d.LengthStats.Mean},
		{"Median length", d.LengthStats.Median},
		{"Min length", d.LengthStats.Min},
		{"Max length", d.LengthStats.Max},
		{"Length std dev", d.LengthStats.Std},
		{"Unique words", d.Vocabulary.UniqueWords},
		{"Total words", d.Vocabulary.TotalWords},
		{"Vocabulary richness", d.Vocabulary.VocabularyRichness},
		{"Too short", d.QualityFlags.TooShort},
		{"Too short %", d.QualityFlags.TooShortPct},
		{"Mostly numeric", d.QualityFlags.MostlyNumeric},
		{"High special chars", d.QualityFlags.HighSpecialChars},
		{"Duplicate groups", d.Duplicates.DuplicateCount},
		{"Duplicate rows", d.Duplicates.TotalDuplicateRows},
	}
	if len(d.Duplicates.TopDuplicates) > 0 {
		rows = append(rows, []any{})
		rows = append(rows, []any{"Duplicate text", "Count"})
		for _, dup := range d.Duplicates.TopDuplicates {
			rows = append(rows, []any{dup.Text, dup.Count})
		}
	}

	for i, row := range rows {
		if err := setRow(f, sheetDescriptions, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDistributionSheet(f *excelize.File, d *analyze.DistributionReport) error {
	if d == nil {
		return nil
	}
	if _, err := f.NewSheet(sheetDistribution); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to create sheet")
	}

	rows := [][]any{
		{"Column", "Unique codes", "Entropy", "Top concentration %", "Rare codes"},
	}
	for _, col := range d.CodeColumns {
		rows = append(rows, []any{col.Column, col.UniqueCodes, col.DistributionEntropy, col.TopCodeConcentration, col.RareCodesCount})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"Overall score", d.OverallScore})
	if len(d.CoOccurrence) > 0 {
		rows = append(rows, []any{})
		rows = append(rows, []any{"Pair", "Unique combinations"})
		for _, co := range d.CoOccurrence {
			rows = append(rows, []any{co.Pair, co.UniqueCombinations})
		}
	}

	for i, row := range rows {
		if err := setRow(f, sheetDistribution, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeReadinessSheet(f *excelize.File, r *analyze.ReadinessReport) error {
	if r == nil {
		return nil
	}
	if _, err := f.NewSheet(sheetReadiness); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to create sheet")
	}

	rows := [][]any{
		{"Column", "Status", "Classes", "Sufficient", "Imbalance", "Ambiguous", "Ready", "Split"},
	}
	for _, col := range r.PerCodeColumn {
		rows = append(rows, []any{
			col.Column, col.Status, col.UniqueClasses, col.ClassesWithSufficientData,
			col.ClassImbalanceRatio, col.AmbiguousDescriptions, col.ReadyForTraining,
			col.RecommendedTrainTestSplit,
		})
	}
	rows = append(rows, []any{})
	rows = append(rows, []any{"Overall score", r.OverallScore})
	rows = append(rows, []any{"Columns ready", r.TrainingViability.ColumnsReady})
	rows = append(rows, []any{"Columns not ready", r.TrainingViability.ColumnsNotReady})
	if len(r.DataQualityIssues) > 0 {
		rows = append(rows, []any{})
		rows = append(rows, []any{"Issues"})
		for _, issue := range r.DataQualityIssues {
			rows = append(rows, []any{issue})
		}
	}

	for i, row := range rows {
		if err := setRow(f, sheetReadiness, i+1, row); err != nil {
			return err
		}
	}
	return nil
}
