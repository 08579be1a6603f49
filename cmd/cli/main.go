package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"segstats/adapters/excel"
	"segstats/adapters/rng"
	"segstats/adapters/stats/toolkit"
	"segstats/app"
	"segstats/domain/core"
	"segstats/domain/stats"
	"segstats/internal"
	apperrors "segstats/internal/errors"
	"segstats/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		appErr := apperrors.FromDomain(err)
		if appErr.Code == apperrors.CodeInternalError {
			fmt.Fprintln(os.Stderr, "error:", err)
		} else {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", appErr.Code, err)
		}
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every analysis command
type globalOptions struct {
	file          string
	sheet         string
	segmentColumn string
	categorical   []string
	seed          int64
	alternative   string
	format        string
	workers       int
	logLevel      string
	degenerate    string
	noYates       bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "segstats",
		Short:         "Statistical tests for customer segmentation tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "json" && opts.format != "table" {
				return apperrors.InvalidInput(fmt.Sprintf("--format must be json or table, got %q", opts.format))
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.file, "file", "", "Customer table (.xlsx or .csv)")
	flags.StringVar(&opts.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	flags.StringVar(&opts.segmentColumn, "segment-column", "cluster", "Column holding the segment labels")
	flags.StringSliceVar(&opts.categorical, "categorical", nil, "Columns to read as categorical regardless of content")
	flags.Int64Var(&opts.seed, "seed", 42, "Random seed for deterministic operations")
	flags.StringVar(&opts.alternative, "alternative", string(stats.TwoSided), "Alternative hypothesis: two-sided|less|greater")
	flags.StringVar(&opts.format, "format", "table", "Output format: json|table")
	flags.IntVar(&opts.workers, "workers", 4, "Segments analysed concurrently by report")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "ERROR|WARN|INFO|DEBUG|TRACE")
	flags.StringVar(&opts.degenerate, "degenerate", "fail", "Zero-variance columns in shape: fail|mark")
	flags.BoolVar(&opts.noYates, "no-yates", false, "Disable the continuity correction on 2x2 association tables")

	rootCmd.AddCommand(
		newColumnsCmd(opts),
		newSegmentsCmd(opts),
		newShapeCmd(opts),
		newVarianceCmd(opts),
		newRanksCmd(opts),
		newAssociationCmd(opts),
		newSummaryCmd(opts),
		newReportCmd(opts),
		newGenerateCmd(opts),
	)
	return rootCmd
}

// service builds the analysis service over the --file table
func (o *globalOptions) service() (*app.SegmentAnalysisService, error) {
	if o.file == "" {
		return nil, apperrors.InvalidInput("--file is required")
	}
	alt, err := stats.ParseAlternative(o.alternative)
	if err != nil {
		return nil, err
	}
	policy, err := toolkit.ParseDegeneratePolicy(o.degenerate)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(o.logLevel))
	categorical := append([]string{o.segmentColumn}, o.categorical...)
	reader := excel.NewDataReader(o.file, excel.WithSheet(o.sheet), excel.WithCategorical(categorical...)).WithLogger(logger)

	return app.NewSegmentAnalysisService(reader, toolkit.New(
		toolkit.WithDegeneratePolicy(policy),
		toolkit.WithYatesCorrection(!o.noYates),
	), rng.NewSeededRNG(), nil, logger, app.AnalysisConfig{
		SegmentColumn: o.segmentColumn,
		Seed:          o.seed,
		Alternative:   alt,
		Workers:       o.workers,
	}), nil
}

// emit writes v as indented JSON, or hands it to the table renderer
func (o *globalOptions) emit(w io.Writer, v interface{}, table func(io.Writer) error) error {
	if o.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table(w)
}

func newColumnsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the table's columns and their inferred kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			cols, err := svc.Columns(cmd.Context())
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), cols, func(w io.Writer) error { return renderColumns(w, cols) })
		},
	}
}

func newSegmentsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List the segment labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			keys, err := svc.Segments(cmd.Context())
			if err != nil {
				return err
			}
			keys = append([]core.SegmentKey{core.AllSegments}, keys...)
			return opts.emit(cmd.OutOrStdout(), keys, func(w io.Writer) error {
				for _, k := range keys {
					if _, err := fmt.Fprintln(w, k); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newShapeCmd(opts *globalOptions) *cobra.Command {
	var segment string

	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Skewness, kurtosis and normality tests for every numeric column",
		Long: `Run the shape battery on every numeric column of a segment.

Example: segstats shape --file customers.xlsx --segment 2 --alternative greater`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			report, err := svc.Shape(cmd.Context(), core.SegmentKey(segment), svc.Config().Alternative)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), report, func(w io.Writer) error { return renderShape(w, report.Results()) })
		},
	}

	cmd.Flags().StringVar(&segment, "segment", string(core.AllSegments), "Segment to analyse")
	return cmd
}

func newVarianceCmd(opts *globalOptions) *cobra.Command {
	var segment, group string

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Levene test on balanced random draws from each group",
		Long: `Test equality of variances across the groups of a grouping column.
Groups are first down-sampled to the smallest group's size with --seed.

Example: segstats variance --file customers.csv --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			results, err := svc.Variance(cmd.Context(), app.GroupRequest{Segment: core.SegmentKey(segment), GroupColumn: group})
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), results, func(w io.Writer) error { return renderGroupTests(w, results) })
		},
	}

	cmd.Flags().StringVar(&segment, "segment", string(core.AllSegments), "Segment to analyse")
	cmd.Flags().StringVar(&group, "group", "", "Grouping column (default: the segment column)")
	return cmd
}

func newRanksCmd(opts *globalOptions) *cobra.Command {
	var segment, group string

	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "Kruskal-Wallis test across the groups of a grouping column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			results, err := svc.Ranks(cmd.Context(), app.GroupRequest{Segment: core.SegmentKey(segment), GroupColumn: group})
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), results, func(w io.Writer) error { return renderGroupTests(w, results) })
		},
	}

	cmd.Flags().StringVar(&segment, "segment", string(core.AllSegments), "Segment to analyse")
	cmd.Flags().StringVar(&group, "group", "", "Grouping column (default: the segment column)")
	return cmd
}

func newAssociationCmd(opts *globalOptions) *cobra.Command {
	var segment, target string
	var byStrength bool

	cmd := &cobra.Command{
		Use:   "association",
		Short: "Chi-square and Cramér's V of every categorical column against a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			results, err := svc.Association(cmd.Context(), core.SegmentKey(segment), target)
			if err != nil {
				return err
			}
			if byStrength {
				results = stats.SortByStrength(results)
			}
			return opts.emit(cmd.OutOrStdout(), results, func(w io.Writer) error { return renderAssociation(w, results) })
		},
	}

	cmd.Flags().StringVar(&segment, "segment", string(core.AllSegments), "Segment to analyse")
	cmd.Flags().StringVar(&target, "target", "", "Target column (default: the segment column)")
	cmd.Flags().BoolVar(&byStrength, "by-strength", false, "Order results by descending Cramér's V")
	return cmd
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	var segment string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Row count, share and column means of a segment against the population",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			summary, err := svc.Summary(cmd.Context(), core.SegmentKey(segment))
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), summary, func(w io.Writer) error { return renderSummary(w, summary) })
		},
	}

	cmd.Flags().StringVar(&segment, "segment", string(core.AllSegments), "Segment to analyse")
	return cmd
}

func newReportCmd(opts *globalOptions) *cobra.Command {
	var within string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every analysis for the population and each segment",
		Long: `Run the full battery over the whole population and every segment.
Analysis failures are reported per segment and do not stop the run.

Example: segstats report --file customers.xlsx --within gender --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			report, err := svc.Report(cmd.Context(), app.ReportRequest{WithinGroupColumn: within})
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), report, func(w io.Writer) error { return renderReport(w, report) })
		},
	}

	cmd.Flags().StringVar(&within, "within", "", "Grouping column tested inside every segment")
	return cmd
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var customers, clusters int
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic clustered customer table as CSV",
		Long: `Generate a deterministic synthetic customer table for trying the analyses.

Example: segstats generate --customers 1000 --clusters 3 --seed 42 --out customers.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if customers < 1 || clusters < 1 {
				return apperrors.InvalidInput("--customers and --clusters must be positive")
			}
			gen := testkit.NewCustomerGenerator(testkit.CustomerGeneratorConfig{
				CustomerCount: customers,
				ClusterCount:  clusters,
				Seed:          opts.seed,
			})

			if out == "" {
				return testkit.WriteCSV(cmd.OutOrStdout(), gen.Generate())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := testkit.WriteCSV(f, gen.Generate()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d customers to %s\n", customers, out)
			return nil
		},
	}

	defaults := testkit.DefaultCustomerConfig()
	cmd.Flags().IntVar(&customers, "customers", defaults.CustomerCount, "Number of customers")
	cmd.Flags().IntVar(&clusters, "clusters", defaults.ClusterCount, "Number of clusters")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV path (default: stdout)")
	return cmd
}
