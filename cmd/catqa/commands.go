package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/catqa/catqa/internal/model"
	"github.com/catqa/catqa/pkg/analyze"
	"github.com/catqa/catqa/pkg/config"
	qaerrors "github.com/catqa/catqa/pkg/errors"
	"github.com/catqa/catqa/pkg/export"
	"github.com/catqa/catqa/pkg/generate"
	"github.com/catqa/catqa/pkg/loader"
	"github.com/catqa/catqa/pkg/server"
	"github.com/catqa/catqa/pkg/telemetry"
	"github.com/catqa/catqa/pkg/tui"
	"github.com/catqa/catqa/pkg/watch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a catalog file and print the quality report",
	Long: `Analyze a product catalog and print a scored quality report.

Examples:
  catqa analyze -i catalog.csv
  catqa analyze -i catalog.xlsx --description-column item_text
  catqa analyze -i catalog.csv --code-columns category,family -o report.json`,
	RunE: runAnalyze,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Analyze a catalog and write the report to a file",
	Long: `Analyze a product catalog and write the report without terminal output.

Examples:
  catqa export -i catalog.csv -o report.json
  catqa export -i catalog.csv -o report.xlsx
  catqa export -i catalog.csv -o report.txt -f csv`,
	RunE: runExport,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic catalog with controllable defects",
	Long: `Generate a deterministic synthetic product catalog for demos and tests.

Examples:
  catqa generate -o sample.csv
  catqa generate -o big.csv --rows 50000 --missing 0.3 --duplicates 0.1`,
	RunE: runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API for uploading catalogs and fetching analysis reports.

Endpoints:
  POST /api/upload        multipart catalog upload
  POST /api/analyze       start analysis of an uploaded catalog
  GET  /api/jobs/{id}     job status
  GET  /api/reports/{id}  completed report (?format=json|csv|xlsx)
  GET  /api/health        liveness check`,
	RunE: runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze a catalog file whenever it changes",
	RunE:  runWatch,
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func resolveRoles(cfg *config.Config, ds *model.Dataset) model.Roles {
	explicit := cfg.Roles()
	if idColumn != "" {
		explicit.ID = idColumn
	}
	if descColumn != "" {
		explicit.Description = descColumn
	}
	if len(codeColumns) > 0 {
		explicit.Codes = codeColumns
	}
	return model.ResolveRoles(ds.Columns(), explicit, model.InferID, model.InferDescription)
}

// analyzeInput loads the input file and runs the full analysis.
func analyzeInput(ctx context.Context, cfg *config.Config, showProgress bool) (*model.Dataset, *analyze.Result, error) {
	ds, err := loader.Load(ctx, inputFile, loader.Options{ShowProgress: showProgress})
	if err != nil {
		return nil, nil, err
	}

	analyzer := analyze.New(cfg.Params())
	if cfg.Telemetry.Enabled {
		tcfg := telemetry.DefaultConfig("catqa")
		tcfg.Endpoint = cfg.Telemetry.Endpoint
		tcfg.ServiceVersion = version
		tracer, shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		} else {
			analyzer.WithTracer(tracer)
			defer shutdown(ctx)
		}
	}

	result, err := analyzer.Analyze(ctx, ds, resolveRoles(cfg, ds))
	return ds, result, err
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := tui.NewRenderer(os.Stdout)
	r.Header(version)

	ds, result, err := analyzeInput(ctx, cfg, !noProgress)
	if err != nil {
		return formatError(err)
	}

	if verbose {
		if stat, err := os.Stat(inputFile); err == nil {
			r.FileInfo(inputFile, stat.Size(), ds.NumRows(), ds.NumColumns())
		}
	}

	r.Result(result)

	if outputFile != "" {
		if err := export.WriteFile(outputFile, result); err != nil {
			return formatError(err)
		}
		fmt.Printf("Report written to %s\n", outputFile)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	_, result, err := analyzeInput(ctx, cfg, false)
	if err != nil {
		return formatError(err)
	}

	if formatFlag == "" {
		return formatError(export.WriteFile(outputFile, result))
	}

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return formatError(err)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.Write(f, result, format); err != nil {
		return formatError(err)
	}
	return f.Close()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts := generate.Options{
		Rows:          genRows,
		Seed:          genSeed,
		CodeColumns:   genCodeCols,
		MissingRate:   genMissing,
		ShortRate:     genShort,
		DuplicateRate: genDuplicates,
	}

	ds, err := generate.Catalog(opts)
	if err != nil {
		return formatError(err)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := generate.WriteCSV(f, ds); err != nil {
		return formatError(err)
	}
	fmt.Printf("Generated %d products (%d columns) into %s\n",
		ds.NumRows(), ds.NumColumns(), outputFile)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		host, port, err := net.SplitHostPort(serveAddr)
		if err != nil {
			return fmt.Errorf("invalid listen address %q: %w", serveAddr, err)
		}
		cfg.Server.Host = host
		cfg.Server.Port, err = strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid listen port %q: %w", port, err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("catqa API listening on http://%s\n", cfg.Server.Addr())
	return server.NewServer(cfg).ListenAndServe(ctx)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := tui.NewRenderer(os.Stdout)
	r.Header(version)

	w, err := watch.NewWatcher()
	if err != nil {
		return formatError(err)
	}
	defer w.Close()

	reanalyze := func(path string) error {
		fmt.Printf("▸ %s changed, re-analyzing\n", path)
		_, result, err := analyzeInput(ctx, cfg, false)
		if err != nil {
			return err
		}
		r.Result(result)
		if outputFile != "" {
			return export.WriteFile(outputFile, result)
		}
		return nil
	}

	w.OnChange = reanalyze
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", formatError(err))
	}

	if err := w.Watch(inputFile); err != nil {
		return formatError(err)
	}

	// Initial run before waiting for changes.
	if err := reanalyze(inputFile); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", inputFile)
	err = w.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// formatError keeps coded errors readable on the CLI; verbose mode adds
// the captured stack trace.
func formatError(err error) error {
	if err == nil {
		return nil
	}
	var qerr *qaerrors.CatQAError
	if errors.As(err, &qerr) && verbose {
		return fmt.Errorf("%s\n%s", qerr.Error(), qerr.FormatStack())
	}
	return err
}
