// catqa - Catalog data quality analyzer
// Scores product catalogs for completeness, description quality, code
// distribution and classifier readiness.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	configPath string
	verbose    bool

	inputFile    string
	outputFile   string
	formatFlag   string
	noProgress   bool
	idColumn     string
	descColumn   string
	codeColumns  []string

	genRows       int
	genSeed       int64
	genCodeCols   int
	genMissing    float64
	genShort      float64
	genDuplicates float64

	serveAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catqa",
	Short: "catqa - Score product catalog data quality",
	Long: `catqa analyzes product catalogs (CSV, XLSX, Parquet) and scores their
fitness for automated classification: completeness, description quality,
code distribution and classifier readiness.

Examples:
  catqa analyze -i catalog.csv
  catqa analyze -i catalog.xlsx -o report.json
  catqa generate -o sample.csv --rows 1000
  catqa serve
  catqa watch -i catalog.csv`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input catalog file (csv, xlsx, parquet)")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write report to file (format from extension)")
	analyzeCmd.Flags().StringVar(&idColumn, "id-column", "", "Product ID column (auto-inferred if empty)")
	analyzeCmd.Flags().StringVar(&descColumn, "description-column", "", "Description column (auto-inferred if empty)")
	analyzeCmd.Flags().StringSliceVar(&codeColumns, "code-columns", nil, "Code columns (all remaining columns if empty)")
	analyzeCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the read progress bar")
	analyzeCmd.MarkFlagRequired("input")

	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input catalog file")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output report file (required)")
	exportCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (json, csv, xlsx) - from extension if empty")
	exportCmd.Flags().StringVar(&idColumn, "id-column", "", "Product ID column (auto-inferred if empty)")
	exportCmd.Flags().StringVar(&descColumn, "description-column", "", "Description column (auto-inferred if empty)")
	exportCmd.Flags().StringSliceVar(&codeColumns, "code-columns", nil, "Code columns (all remaining columns if empty)")
	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("output")

	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "sample_catalog.csv", "Output CSV path")
	generateCmd.Flags().IntVar(&genRows, "rows", 1000, "Number of products")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Random seed")
	generateCmd.Flags().IntVar(&genCodeCols, "codes", 3, "Number of code columns")
	generateCmd.Flags().Float64Var(&genMissing, "missing", 0.15, "Null rate for optional fields")
	generateCmd.Flags().Float64Var(&genShort, "short", 0.05, "Fraction of truncated descriptions")
	generateCmd.Flags().Float64Var(&genDuplicates, "duplicates", 0.05, "Fraction of duplicated descriptions")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")

	watchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Catalog file to watch (required)")
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Re-export report to file on each change")
	watchCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}
