package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/deungi/pkg/analysis"
	"github.com/coolbeans/deungi/pkg/config"
	"github.com/coolbeans/deungi/pkg/metrics"
	"github.com/coolbeans/deungi/pkg/report"
	"github.com/coolbeans/deungi/pkg/server"
	"github.com/coolbeans/deungi/pkg/taxonomy"
	"github.com/coolbeans/deungi/pkg/validate"
	"github.com/coolbeans/deungi/pkg/watch"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deungi",
		Short: "Korean real-estate registry analyzer",
		Long: `Deungi parses Korean real-estate registry documents (등기사항전부증명서),
scores their risk and validates the extracted data.

Pipeline:
  - parse     split 표제부/갑구/을구 and extract entries, amounts and holders
  - score     deduct risk factors from 100 and assign a grade A-F
  - validate  run format, arithmetic, context and cross-check tiers

Configuration is read from --config (YAML), then DEUNGI_* environment
variables, then command-line flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().String("taxonomy", "", "Taxonomy override file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(taxonomyCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// app holds the dependencies shared by subcommands.
type app struct {
	config   *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	taxonomy taxonomy.Source
	analyzer *analysis.Analyzer
	watcher  *taxonomy.Watcher
}

// newApp loads configuration, applies flag overrides and builds the
// analyzer. With hotReload the taxonomy file is followed for changes.
func newApp(cmd *cobra.Command, hotReload bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if taxonomyPath, _ := cmd.Flags().GetString("taxonomy"); taxonomyPath != "" {
		cfg.Analysis.TaxonomyFile = taxonomyPath
	}
	if logLevel, _ := cmd.Flags().GetString("log-level"); logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Lookup("price") != nil && cmd.Flags().Changed("price") {
		cfg.Analysis.EstimatedPrice, _ = cmd.Flags().GetInt64("price")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	application := &app{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	switch {
	case cfg.Analysis.TaxonomyFile == "":
		application.taxonomy = taxonomy.NewStatic(nil)
	case hotReload:
		taxonomyWatcher, err := taxonomy.NewWatcher(cfg.Analysis.TaxonomyFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load taxonomy: %w", err)
		}
		if err := taxonomyWatcher.Watch(); err != nil {
			return nil, err
		}
		application.taxonomy = taxonomyWatcher
		application.watcher = taxonomyWatcher
	default:
		loaded, err := taxonomy.LoadFile(cfg.Analysis.TaxonomyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load taxonomy: %w", err)
		}
		application.taxonomy = taxonomy.NewStatic(loaded)
	}

	application.analyzer = analysis.NewAnalyzer(
		analysis.WithTaxonomySource(application.taxonomy),
		analysis.WithMetrics(application.metrics),
		analysis.WithLogger(logger),
		analysis.WithConcurrency(cfg.Analysis.Concurrency),
		analysis.WithDefaultPrice(cfg.Analysis.EstimatedPrice),
	)
	return application, nil
}

// close stops the taxonomy watcher when one is running.
func (application *app) close() {
	if application.watcher != nil {
		application.watcher.Stop()
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a registry document into structured data",
		Long: `Parse a registry document and print the title, ownership and
encumbrance sections with the derived summary.

Reads standard input when no file (or "-") is given.

Example:
  deungi parse registry.txt
  deungi parse registry.txt --format yaml
  pbpaste | deungi parse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			withRaw, _ := cmd.Flags().GetBool("raw")

			format, err := report.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			if format != report.FormatJSON && format != report.FormatYAML {
				return fmt.Errorf("parse supports json or yaml output, got %q", formatStr)
			}

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			_, text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			registry := application.analyzer.Parse(text)
			if !withRaw {
				registry.RawText = ""
			}

			data, err := report.Encode(registry, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().Bool("raw", false, "Include the normalized raw text")

	return cmd
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score the risk of a registry document",
		Long: `Score a registry document from 100 down, one deduction per risk factor,
and assign a grade (A >= 85, B >= 70, C >= 50, D >= 30, F).

The mortgage and total-claims ratios need an estimated price.

Example:
  deungi score registry.txt --price 500000000
  deungi score registry.txt --price 500000000 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")

			format, err := report.ParseFormat(formatStr)
			if err != nil {
				return err
			}

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			_, text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			_, score := application.analyzer.Score(text, application.config.Analysis.EstimatedPrice)

			switch format {
			case report.FormatJSON, report.FormatYAML:
				data, err := report.Encode(score, format)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			default:
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Risk Score: %d/100 (grade %s)\n", score.TotalScore, score.Grade)
				if application.config.Analysis.EstimatedPrice > 0 {
					fmt.Fprintf(out, "Mortgage ratio: %.1f%%\n", score.MortgageRatio)
				}
				if len(score.Factors) > 0 {
					fmt.Fprintln(out, "\nFactors:")
					for _, factor := range score.Factors {
						fmt.Fprintf(out, "  -%-3d %-8s %s\n", factor.Deduction, factor.Severity, factor.Description)
					}
				}
				fmt.Fprintf(out, "\n%s\n", score.Summary)
				return nil
			}
		},
	}

	cmd.Flags().Int64P("price", "p", 0, "Estimated sale price in won")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the data extracted from a registry document",
		Long: `Validate a parsed registry across four tiers:

  format      dates, amounts, holders, entry order
  arithmetic  stored summary totals against an independent recount
  context     chronology, cancellation references, post-seizure mortgages
  crosscheck  risk factors against summary flags, score and grade

Use --report to save results to a file (format based on extension: .md, .yaml, .json).

Example:
  deungi validate registry.txt --price 500000000
  deungi validate registry.txt --advisory "근저당 비율이 높습니다"
  deungi validate registry.txt --report validation.md --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			advisory, _ := cmd.Flags().GetString("advisory")
			reportPath, _ := cmd.Flags().GetString("report")
			strictMode, _ := cmd.Flags().GetBool("strict")

			format, err := report.ParseFormat(formatStr)
			if err != nil {
				return err
			}

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			source, text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			analysisReport, err := application.analyzer.Analyze(cmd.Context(), analysis.Request{
				Source:   source,
				Text:     text,
				Advisory: advisory,
			})
			if err != nil {
				return err
			}
			result := analysisReport.Validation

			if err := writeValidation(cmd.OutOrStdout(), result, format); err != nil {
				return err
			}

			if reportPath != "" {
				var buf strings.Builder
				if err := writeValidation(&buf, result, report.FormatForPath(reportPath)); err != nil {
					return err
				}
				if err := os.WriteFile(reportPath, []byte(buf.String()), 0644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", reportPath)
			}

			if strictMode && !result.IsValid {
				return fmt.Errorf("validation failed: %d errors", result.Summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().Int64P("price", "p", 0, "Estimated sale price in won")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml, markdown)")
	cmd.Flags().String("advisory", "", "Advice text to check for relevance against the registry")
	cmd.Flags().String("report", "", "Save validation report to file (format based on extension: .md, .yaml, .json)")
	cmd.Flags().Bool("strict", false, "Exit with an error when validation finds errors")

	return cmd
}

// writeValidation renders a validation result in the given format.
func writeValidation(w io.Writer, result *validate.Result, format report.Format) error {
	switch format {
	case report.FormatText:
		_, err := io.WriteString(w, result.String())
		return err
	case report.FormatMarkdown:
		_, err := io.WriteString(w, result.ToMarkdown())
		return err
	case report.FormatJSON, report.FormatYAML:
		data, err := report.Encode(result, format)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("validation reports support text, json, yaml or markdown, got %q", format)
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Run the full pipeline on one or more registry documents",
		Long: `Parse, score and validate registry documents.

With one file the full report is printed. With several files the documents
are analyzed in parallel and a batch summary is printed; use --report-dir to
keep one report per document and --csv for a spreadsheet of scores.

Example:
  deungi analyze registry.txt --price 500000000
  deungi analyze registry.txt --report analysis.html
  deungi analyze docs/*.txt --report-dir reports --csv scores.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			advisory, _ := cmd.Flags().GetString("advisory")
			reportPath, _ := cmd.Flags().GetString("report")
			reportDir, _ := cmd.Flags().GetString("report-dir")
			csvPath, _ := cmd.Flags().GetString("csv")

			format, err := report.ParseFormat(formatStr)
			if err != nil {
				return err
			}

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			requests := make([]analysis.Request, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				requests = append(requests, analysis.Request{
					Source:   path,
					Text:     string(data),
					Advisory: advisory,
				})
			}

			reports, err := application.analyzer.AnalyzeBatch(cmd.Context(), requests)
			if err != nil {
				return err
			}

			if len(reports) == 1 {
				if err := report.Write(cmd.OutOrStdout(), reports[0], format); err != nil {
					return err
				}
				if reportPath != "" {
					if err := writeReportFile(reportPath, reports[0], report.FormatForPath(reportPath)); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", reportPath)
				}
			} else {
				batchSummary := analysis.Summarize(reports)
				switch format {
				case report.FormatJSON, report.FormatYAML:
					data, err := report.Encode(batchSummary, format)
					if err != nil {
						return err
					}
					if _, err := cmd.OutOrStdout().Write(data); err != nil {
						return err
					}
				default:
					fmt.Fprint(cmd.OutOrStdout(), batchSummary.String())
				}
			}

			if reportDir != "" {
				if err := os.MkdirAll(reportDir, 0755); err != nil {
					return fmt.Errorf("failed to create report directory: %w", err)
				}
				dirFormat := format
				if dirFormat == report.FormatText {
					dirFormat = report.FormatJSON
				}
				for _, analysisReport := range reports {
					path := filepath.Join(reportDir, reportFileName(analysisReport.Source, dirFormat))
					if err := writeReportFile(path, analysisReport, dirFormat); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%d reports saved to: %s\n", len(reports), reportDir)
			}

			if csvPath != "" {
				if err := os.WriteFile(csvPath, []byte(analysis.ReportsToCSV(reports)), 0644); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "CSV saved to: %s\n", csvPath)
			}

			return nil
		},
	}

	cmd.Flags().Int64P("price", "p", 0, "Estimated sale price in won, applied to every document")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml, markdown, html)")
	cmd.Flags().String("advisory", "", "Advice text to check for relevance against each registry")
	cmd.Flags().String("report", "", "Save the report of a single document to file (format based on extension)")
	cmd.Flags().String("report-dir", "", "Save one report per document into this directory")
	cmd.Flags().String("csv", "", "Save a CSV row per document")

	return cmd
}

func writeReportFile(path string, analysisReport *analysis.Report, format report.Format) error {
	data, err := report.Render(analysisReport, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// reportFileName derives "<name>.report.<ext>" from a document path.
func reportFileName(source string, format report.Format) string {
	extension := map[report.Format]string{
		report.FormatJSON:     "json",
		report.FormatYAML:     "yaml",
		report.FormatMarkdown: "md",
		report.FormatHTML:     "html",
		report.FormatText:     "txt",
	}[format]
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return base + ".report." + extension
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Start an HTTP server exposing the pipeline.

Endpoints:
  POST /v1/parse      {"text": "..."}
  POST /v1/score      {"text": "...", "estimated_price": 500000000}
  POST /v1/validate   {"text": "...", "estimated_price": 0, "advisory": "..."}
  POST /v1/analyze    same body; ?format=markdown|html|text|yaml renders the report
  GET  /v1/taxonomy
  GET  /healthz
  GET  /metrics

The taxonomy file is reloaded when it changes. With --watch-dir the
directory watcher runs alongside the server.

Example:
  deungi serve --addr :8080
  deungi serve --taxonomy terms.yaml --watch-dir inbox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.close()

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				application.config.Server.Addr = addr
			}
			if watchDir, _ := cmd.Flags().GetString("watch-dir"); watchDir != "" {
				application.config.Watch.Dir = watchDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.New(application.analyzer, application.logger, application.metrics, application.config.Server.MaxBodyBytes)
			httpServer := server.NewHTTPServer(application.config.Server.Addr, handler.Router())

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return server.Run(groupCtx, httpServer, application.logger)
			})

			if application.config.Watch.Dir != "" {
				directoryWatcher, err := application.newDirectoryWatcher()
				if err != nil {
					return err
				}
				group.Go(func() error {
					return directoryWatcher.Run(groupCtx)
				})
			}

			return group.Wait()
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().Int64P("price", "p", 0, "Default estimated price for requests without one")
	cmd.Flags().String("watch-dir", "", "Also watch this directory for registry documents")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Analyze registry documents as they appear in a directory",
		Long: `Watch a directory and write "<name>.report.json" for every new or
changed document. Unchanged content is skipped; with --state-file this
holds across restarts.

Example:
  deungi watch inbox
  deungi watch inbox --report-dir reports --state-file .deungi-state.json
  deungi watch inbox --once`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			once, _ := cmd.Flags().GetBool("once")

			application, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.close()

			watchConfig := &application.config.Watch
			if len(args) == 1 {
				watchConfig.Dir = args[0]
			}
			if reportDir, _ := cmd.Flags().GetString("report-dir"); reportDir != "" {
				watchConfig.ReportDir = reportDir
			}
			if pattern, _ := cmd.Flags().GetString("pattern"); pattern != "" {
				watchConfig.Pattern = pattern
			}
			if stateFile, _ := cmd.Flags().GetString("state-file"); stateFile != "" {
				watchConfig.StateFile = stateFile
			}
			if watchConfig.Dir == "" {
				return fmt.Errorf("a directory argument or watch.dir is required")
			}

			directoryWatcher, err := application.newDirectoryWatcher()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !once {
				return directoryWatcher.Run(ctx)
			}

			results, err := directoryWatcher.Scan(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, result := range results {
				status := "PASS"
				if !result.Valid {
					status = "FAIL"
				}
				fmt.Fprintf(out, "%s  grade %s  %s  -> %s\n", status, result.Grade, result.Path, result.ReportPath)
			}
			fmt.Fprintf(out, "%d documents analyzed\n", len(results))
			return nil
		},
	}

	cmd.Flags().String("report-dir", "", "Write reports here instead of next to documents")
	cmd.Flags().String("pattern", "", "File name glob (default *.txt)")
	cmd.Flags().String("state-file", "", "Persist processed-file state to this file")
	cmd.Flags().Int64P("price", "p", 0, "Estimated sale price in won, applied to every document")
	cmd.Flags().Bool("once", false, "Scan once and exit")

	return cmd
}

func (application *app) newDirectoryWatcher() (*watch.Watcher, error) {
	watchConfig := application.config.Watch
	return watch.New(watch.Config{
		Dir:            watchConfig.Dir,
		ReportDir:      watchConfig.ReportDir,
		Pattern:        watchConfig.Pattern,
		StateFile:      watchConfig.StateFile,
		EstimatedPrice: application.config.Analysis.EstimatedPrice,
	}, application.analyzer, application.logger, application.metrics)
}

func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the right-type taxonomy",
		Long: `Inspect the term tables that classify registry entries.

Terms are matched longest first. A taxonomy file (--taxonomy) extends the
built-in tables; a term already present replaces its classification.`,
	}

	cmd.AddCommand(taxonomyListCmd())
	cmd.AddCommand(taxonomyExportCmd())

	return cmd
}

func taxonomyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List taxonomy terms in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			section, _ := cmd.Flags().GetString("section")

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			current := application.taxonomy.Current()
			tables := []*taxonomy.Table{current.Ownership, current.Encumbrance}
			switch section {
			case "", "all":
			case "ownership", "gapgu":
				tables = tables[:1]
			case "encumbrance", "eulgu":
				tables = tables[1:]
			default:
				return fmt.Errorf("unknown section %q (ownership, encumbrance, all)", section)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Taxonomy: %s\n", current.Name)
			for _, table := range tables {
				fmt.Fprintf(out, "\n%s (%d terms)\n", table.Name(), table.Len())
				for _, term := range table.Terms() {
					fmt.Fprintf(out, "  %-28s %-24s %s\n", term.Text, term.Right, term.Risk)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("section", "all", "Section to list (ownership, encumbrance, all)")

	return cmd
}

func taxonomyExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the effective taxonomy as YAML",
		Long: `Export the effective taxonomy as YAML. The output can be edited and
passed back with --taxonomy.

Example:
  deungi taxonomy export --output terms.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, _ := cmd.Flags().GetString("output")

			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			data, err := application.taxonomy.Current().ToYAML()
			if err != nil {
				return fmt.Errorf("failed to serialize taxonomy: %w", err)
			}

			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write taxonomy: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Taxonomy exported to: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer application.close()

			data, err := application.config.ToYAML()
			if err != nil {
				return fmt.Errorf("failed to serialize config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// readInput returns the source name and text of the file argument, or of
// standard input when no argument or "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}

	source := args[0]
	data, err := os.ReadFile(source)
	if os.IsNotExist(err) {
		return "", "", fmt.Errorf("source file not found: %s", source)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read source: %w", err)
	}
	return source, string(data), nil
}
