package analyze

import (
	"strings"

	"github.com/catqa/catqa/internal/model"
)

// CompletenessReport holds per-column and row-level presence statistics.
type CompletenessReport struct {
	TotalRows          int                  `json:"total_rows"`
	ColumnCompleteness []ColumnCompleteness `json:"column_completeness"`
	RowCompleteness    RowCompleteness      `json:"row_completeness"`
	OverallScore       float64              `json:"overall_score"`
}

// ColumnCompleteness holds presence counts for one column. A value counts
// as present only when it is non-empty after trimming whitespace; nulls and
// empty strings are both missing.
type ColumnCompleteness struct {
	Column          string  `json:"column"`
	NonNullCount    int     `json:"non_null_count"`
	NonEmptyCount   int     `json:"non_empty_count"`
	CompletenessPct float64 `json:"completeness_pct"`
	MissingCount    int     `json:"missing_count"`
}

// RowCompleteness classifies rows by how many code columns are populated.
// The three counts always sum to the total row count.
type RowCompleteness struct {
	AllCodesPresent int     `json:"all_codes_present"`
	NoCodesPresent  int     `json:"no_codes_present"`
	PartialCodes    int     `json:"partial_codes"`
	AvgCodesPerRow  float64 `json:"avg_codes_per_row"`
}

// AnalyzeCompleteness computes presence statistics for the identifier,
// description and every code column, plus the row-level code summary.
// The overall score is the unweighted mean of the column percentages.
func AnalyzeCompleteness(ds *model.Dataset, roles model.Roles) *CompletenessReport {
	totalRows := ds.NumRows()

	columns := make([]string, 0, len(roles.Codes)+2)
	columns = append(columns, roles.ID, roles.Description)
	columns = append(columns, roles.Codes...)

	report := &CompletenessReport{
		TotalRows:          totalRows,
		ColumnCompleteness: make([]ColumnCompleteness, 0, len(columns)),
	}

	pcts := make([]float64, 0, len(columns))
	for _, col := range columns {
		metric := columnCompleteness(ds, col, totalRows)
		report.ColumnCompleteness = append(report.ColumnCompleteness, metric)
		pcts = append(pcts, metric.CompletenessPct)
	}

	report.RowCompleteness = rowCompleteness(ds, roles.Codes, totalRows)
	report.OverallScore = round2(meanFloat(pcts))
	return report
}

func columnCompleteness(ds *model.Dataset, column string, totalRows int) ColumnCompleteness {
	idx := ds.ColumnIndex(column)

	nonNull := 0
	nonEmpty := 0
	for row := 0; row < totalRows; row++ {
		cell := ds.Cell(row, idx)
		if cell.Null {
			continue
		}
		nonNull++
		if strings.TrimSpace(cell.Raw) != "" {
			nonEmpty++
		}
	}

	return ColumnCompleteness{
		Column:          column,
		NonNullCount:    nonNull,
		NonEmptyCount:   nonEmpty,
		CompletenessPct: round2(float64(nonEmpty) / float64(totalRows) * 100),
		MissingCount:    totalRows - nonEmpty,
	}
}

func rowCompleteness(ds *model.Dataset, codes []string, totalRows int) RowCompleteness {
	indices := make([]int, len(codes))
	for i, col := range codes {
		indices[i] = ds.ColumnIndex(col)
	}

	var summary RowCompleteness
	totalPresent := 0
	for row := 0; row < totalRows; row++ {
		present := 0
		for _, idx := range indices {
			if !ds.Cell(row, idx).Null {
				present++
			}
		}
		totalPresent += present

		switch {
		case present == len(codes):
			summary.AllCodesPresent++
		case present == 0:
			summary.NoCodesPresent++
		default:
			summary.PartialCodes++
		}
	}

	if totalRows > 0 {
		summary.AvgCodesPerRow = round2(float64(totalPresent) / float64(totalRows))
	}
	return summary
}
