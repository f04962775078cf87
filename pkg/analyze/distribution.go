package analyze

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/catqa/catqa/internal/model"
)

// maxCoOccurrenceColumns bounds the pairwise co-occurrence analysis to the
// first code columns, capping the otherwise quadratic cost.
const maxCoOccurrenceColumns = 3

// entropyCeiling is the assumed practical ceiling, in bits, used to
// normalize mean entropy into a 0-100 score. A tunable constant, not a
// hard law.
const entropyCeiling = 5.0

// DistributionReport holds frequency, entropy and co-occurrence statistics
// over the code columns.
type DistributionReport struct {
	CodeColumns  []CodeColumnDistribution `json:"code_columns"`
	CoOccurrence []CoOccurrence           `json:"co_occurrence"`
	OverallScore float64                  `json:"overall_score"`
}

// CodeColumnDistribution describes the value distribution of one code
// column. Frequency listings are ordered most-frequent first.
type CodeColumnDistribution struct {
	Column               string      `json:"column"`
	UniqueCodes          int         `json:"unique_codes"`
	MostCommon           []CodeCount `json:"most_common"`
	RareCodesCount       int         `json:"rare_codes_count"`
	RareCodes            []CodeCount `json:"rare_codes"`
	DistributionEntropy  float64     `json:"distribution_entropy"`
	TopCodeConcentration float64     `json:"top_code_concentration"`
}

// CodeCount pairs a code value with its frequency.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// CoOccurrence summarizes value combinations of one code-column pair.
type CoOccurrence struct {
	Pair               string       `json:"pair"`
	UniqueCombinations int          `json:"unique_combinations"`
	TopCombinations    []ComboCount `json:"top_combinations"`
}

// ComboCount pairs a value combination with its frequency.
type ComboCount struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Count  int    `json:"count"`
}

// AnalyzeCodeDistribution computes per-column value distributions and the
// bounded pairwise co-occurrence summary. Columns are processed in
// parallel; they share nothing but the read-only dataset. The overall
// score normalizes mean entropy against the entropy ceiling.
func AnalyzeCodeDistribution(ctx context.Context, ds *model.Dataset, codes []string, rareThreshold float64) *DistributionReport {
	totalRows := ds.NumRows()

	report := &DistributionReport{
		CodeColumns: make([]CodeColumnDistribution, len(codes)),
	}

	g, _ := errgroup.WithContext(ctx)
	for i, col := range codes {
		i, col := i, col
		g.Go(func() error {
			report.CodeColumns[i] = codeColumnDistribution(ds, col, totalRows, rareThreshold)
			return nil
		})
	}
	// Analyzer goroutines never fail; Wait is a join barrier.
	_ = g.Wait()

	report.CoOccurrence = coOccurrence(ds, codes)

	entropies := make([]float64, 0, len(report.CodeColumns))
	for _, cc := range report.CodeColumns {
		entropies = append(entropies, cc.DistributionEntropy)
	}
	if len(entropies) > 0 {
		report.OverallScore = round2(minF(meanFloat(entropies)/entropyCeiling*100, 100))
	}

	return report
}

func codeColumnDistribution(ds *model.Dataset, column string, totalRows int, rareThreshold float64) CodeColumnDistribution {
	idx := ds.ColumnIndex(column)

	counts := make(map[string]int)
	nonNull := 0
	for row := 0; row < totalRows; row++ {
		cell := ds.Cell(row, idx)
		if cell.Null {
			continue
		}
		counts[cell.Raw]++
		nonNull++
	}

	ranked := rankCodes(counts)

	dist := CodeColumnDistribution{
		Column:              column,
		UniqueCodes:         len(ranked),
		DistributionEntropy: entropy(counts, nonNull),
	}

	if len(ranked) > 0 {
		dist.TopCodeConcentration = round2(float64(ranked[0].Count) / float64(totalRows) * 100)
	}

	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	dist.MostCommon = top

	rareLimit := float64(totalRows) * rareThreshold
	var rare []CodeCount
	for _, cc := range ranked {
		if float64(cc.Count) < rareLimit {
			rare = append(rare, cc)
		}
	}
	dist.RareCodesCount = len(rare)
	if len(rare) > 20 {
		rare = rare[:20]
	}
	dist.RareCodes = rare

	return dist
}

// rankCodes orders value counts most-frequent first, breaking ties by
// value for deterministic output.
func rankCodes(counts map[string]int) []CodeCount {
	ranked := make([]CodeCount, 0, len(counts))
	for code, count := range counts {
		ranked = append(ranked, CodeCount{Code: code, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

// entropy computes Shannon entropy in bits over observed probabilities,
// with a small epsilon guarding log2(0). A single-value column yields 0.
func entropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	e := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		e -= p * math.Log2(p+1e-10)
	}
	e = round4(e)
	if e == 0 {
		// The epsilon can leave a negative zero behind.
		e = math.Abs(e)
	}
	return e
}

// coOccurrence groups rows by value pairs for every pair among the first
// maxCoOccurrenceColumns code columns. Rows missing either value are
// skipped.
func coOccurrence(ds *model.Dataset, codes []string) []CoOccurrence {
	bounded := codes
	if len(bounded) > maxCoOccurrenceColumns {
		bounded = bounded[:maxCoOccurrenceColumns]
	}

	var result []CoOccurrence
	for i := 0; i < len(bounded); i++ {
		for j := i + 1; j < len(bounded); j++ {
			result = append(result, pairCoOccurrence(ds, bounded[i], bounded[j]))
		}
	}
	return result
}

func pairCoOccurrence(ds *model.Dataset, left, right string) CoOccurrence {
	leftIdx := ds.ColumnIndex(left)
	rightIdx := ds.ColumnIndex(right)

	counts := make(map[[2]string]int)
	for row := 0; row < ds.NumRows(); row++ {
		lc := ds.Cell(row, leftIdx)
		rc := ds.Cell(row, rightIdx)
		if lc.Null || rc.Null {
			continue
		}
		counts[[2]string{lc.Raw, rc.Raw}]++
	}

	combos := make([]ComboCount, 0, len(counts))
	for pair, count := range counts {
		combos = append(combos, ComboCount{First: pair[0], Second: pair[1], Count: count})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Count != combos[j].Count {
			return combos[i].Count > combos[j].Count
		}
		if combos[i].First != combos[j].First {
			return combos[i].First < combos[j].First
		}
		return combos[i].Second < combos[j].Second
	})

	co := CoOccurrence{
		Pair:               fmt.Sprintf("%s_x_%s", left, right),
		UniqueCombinations: len(combos),
	}
	if len(combos) > 10 {
		combos = combos[:10]
	}
	co.TopCombinations = combos
	return co
}
