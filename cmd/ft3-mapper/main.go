package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/elchacal801/flame-fraud/internal/adapter/catalog"
	"github.com/elchacal801/flame-fraud/internal/adapter/exporter"
	"github.com/elchacal801/flame-fraud/internal/adapter/metrics"
	"github.com/elchacal801/flame-fraud/internal/adapter/threatpath"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ft3"
	"github.com/elchacal801/flame-fraud/internal/core/service"
	"github.com/elchacal801/flame-fraud/internal/logging"
)

const defaultOutput = "ft3_mapping_suggestions.json"

var errNothingMapped = errors.New("no threat path could be mapped")

type options struct {
	root           string
	apply          bool
	output         string
	weights        ft3.Weights
	coverageTarget int
	metricsFile    string
	verbose        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{weights: ft3.DefaultWeights()}

	cmd := &cobra.Command{
		Use:          "ft3-mapper",
		Short:        "Suggest FT3 tactics and techniques for FLAME threat paths",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New("ft3-mapper", opts.verbose)
			if err := godotenv.Load(); err != nil {
				logger.Debug().Msg("no .env file found")
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.root, "root", ".", "FLAME repository root")
	flags.BoolVar(&opts.apply, "apply", false, "write suggested tactics into threat path frontmatter")
	flags.StringVar(&opts.output, "output", "", "suggestions JSON path (default <root>/"+defaultOutput+")")
	flags.Float64Var(&opts.weights.NameMatch, "name-weight", opts.weights.NameMatch, "score for a keyword found in a technique name")
	flags.Float64Var(&opts.weights.DescriptionMatch, "description-weight", opts.weights.DescriptionMatch, "score for a keyword found only in a technique description")
	flags.Float64Var(&opts.weights.SubTechniqueThreshold, "sub-technique-threshold", opts.weights.SubTechniqueThreshold, "minimum score for a sub-technique suggestion")
	flags.IntVar(&opts.weights.MaxTechniques, "max-techniques", opts.weights.MaxTechniques, "maximum techniques suggested per threat path")
	flags.IntVar(&opts.coverageTarget, "coverage-target", 18, "threat paths expected at medium or high confidence")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts options, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	output := opts.output
	if output == "" {
		output = filepath.Join(root, defaultOutput)
	}

	mode := "dry-run"
	if opts.apply {
		mode = "apply"
	}
	logger.Info().Str("root", root).Str("mode", mode).Msg("FT3 auto-mapper")

	cat, err := catalog.LoadFT3(root)
	if err != nil {
		logger.Error().Err(err).Msg("cannot load FT3 catalog")
		return err
	}
	logger.Info().Int("tactics", len(cat.Tactics())).Int("techniques", len(cat.Techniques())).Msg("loaded FT3 catalog")
	if names := cat.UnmappedTacticNames(); len(names) > 0 {
		logger.Warn().Strs("names", names).Msg("technique tactic names not in tactics catalog")
	}

	metrics.InitMetrics()
	defer writeMetrics(opts.metricsFile, logger)

	svc := service.NewMappingService(threatpath.NewStore(root), ft3.NewMapper(cat, opts.weights), logger)

	report, err := svc.MapAll(ctx)
	if err != nil {
		logger.Error().Err(err).Str("dir", filepath.Join(root, threatpath.Dir)).Msg("cannot map threat paths")
		return err
	}
	for _, it := range report.Items {
		metrics.RecordMapping(string(it.Suggestion.Confidence))
	}

	order, suggestions := report.Suggestions()
	if err := exporter.WriteMappingJSON(output, order, suggestions); err != nil {
		logger.Error().Err(err).Msg("failed to write suggestions")
		return err
	}
	logger.Info().Str("path", output).Msg("wrote mapping suggestions")

	printSummary(out, report, opts.coverageTarget)
	if covered := report.MediumOrHigh(); covered < opts.coverageTarget {
		logger.Warn().Int("covered", covered).Int("total", report.Total()).Int("target", opts.coverageTarget).
			Msg("below target: too few threat paths at medium or high confidence")
	}

	if opts.apply {
		res := svc.Apply(ctx, report)
		for i := 0; i < res.Applied; i++ {
			metrics.RecordApply("applied")
		}
		for i := 0; i < res.Failed; i++ {
			metrics.RecordApply("failed")
		}
		fmt.Fprintf(out, "Applied mappings to %d file(s), %d failed\n", res.Applied, res.Failed)
	}

	if report.Total() == 0 {
		return errNothingMapped
	}
	return nil
}

func printSummary(out io.Writer, report *service.MappingReport, target int) {
	counts := report.Counts()
	fmt.Fprintln(out, "Mapping summary:")
	fmt.Fprintf(out, "  Total TPs: %d\n", report.Total())
	fmt.Fprintf(out, "  High confidence:   %d\n", counts[domain.ConfidenceHigh])
	fmt.Fprintf(out, "  Medium confidence: %d\n", counts[domain.ConfidenceMedium])
	fmt.Fprintf(out, "  Low confidence:    %d\n", counts[domain.ConfidenceLow])
	fmt.Fprintf(out, "  Medium+High: %d / %d (target: >= %d)\n", report.MediumOrHigh(), report.Total(), target)
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "  Skipped: %d\n", len(report.Skipped))
	}
}

func writeMetrics(path string, logger zerolog.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to write metrics")
	}
}
