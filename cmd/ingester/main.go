package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/elchacal801/flame-fraud/internal/adapter/exporter"
	"github.com/elchacal801/flame-fraud/internal/adapter/httpclient"
	"github.com/elchacal801/flame-fraud/internal/adapter/metrics"
	"github.com/elchacal801/flame-fraud/internal/adapter/notifier"
	"github.com/elchacal801/flame-fraud/internal/adapter/provider"
	"github.com/elchacal801/flame-fraud/internal/adapter/repository"
	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ports"
	"github.com/elchacal801/flame-fraud/internal/core/service"
	"github.com/elchacal801/flame-fraud/internal/logging"
)

const (
	defaultOutput  = "data/regulatory_alerts.csv"
	dryRunPreview  = 10
	requestTimeout = 60 * time.Second
)

var errNoAlerts = errors.New("active sources produced no alerts")

type options struct {
	root         string
	configPath   string
	output       string
	dryRun       bool
	sources      string
	timeout      time.Duration
	stixOutput   string
	cefOutput    string
	databaseURL  string
	metricsFile  string
	slackChannel string
	verbose      bool
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the ingester command. A nil client means a resilient
// client configured from FLAME_HTTP_* variables.
func newRootCmd(client provider.Doer) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "ingester",
		Short:        "Collect regulatory alerts and write the consolidated alerts file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New("ingester", opts.verbose)
			if err := godotenv.Load(); err != nil {
				logger.Debug().Msg("no .env file found")
			}
			if opts.databaseURL == "" {
				opts.databaseURL = os.Getenv("DATABASE_URL")
			}
			if opts.slackChannel == "" {
				opts.slackChannel = os.Getenv("SLACK_CHANNEL")
			}
			if client == nil {
				client = httpclient.NewResilientClient(requestTimeout, httpclient.DefaultConfig(), logger)
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts, client, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.root, "root", ".", "FLAME repository root")
	flags.StringVar(&opts.configPath, "config", "", "source config path (default <root>/"+config.DefaultPath+")")
	flags.StringVar(&opts.output, "output", "", "alerts CSV path (default <root>/"+defaultOutput+")")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the first alerts instead of writing any output")
	flags.StringVar(&opts.sources, "sources", "", "comma-separated sources to run (default: all enabled)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall run timeout")
	flags.StringVar(&opts.stixOutput, "stix-output", "", "also write a STIX 2.1 bundle to this path")
	flags.StringVar(&opts.cefOutput, "cef-output", "", "also write CEF lines to this path")
	flags.StringVar(&opts.databaseURL, "database-url", "", "Postgres URL to upsert alerts into (env DATABASE_URL)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.StringVar(&opts.slackChannel, "slack-channel", "", "post a run summary to this Slack channel (env SLACK_CHANNEL, token SLACK_BOT_TOKEN)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts options, client provider.Doer, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}

	cfgPath := config.ResolvePath(root, opts.configPath)
	logger.Info().Str("path", cfgPath).Msg("loading source config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error().Err(err).Msg("cannot load source config")
		return err
	}

	metrics.InitMetrics()
	defer writeMetrics(opts.metricsFile, logger)

	sources := provider.Build(cfg, splitList(opts.sources), client, logger)
	if len(sources) == 0 {
		logger.Warn().Msg("no active sources to run")
		return nil
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	logger.Info().Int("count", len(sources)).Strs("sources", names).Msg("running sources")

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	collection := service.CollectAlerts(ctx, sources, logger)
	alerts := collection.Alerts

	if opts.dryRun {
		printDryRun(out, alerts)
	} else {
		if err := writeOutputs(ctx, root, opts, alerts, logger); err != nil {
			return err
		}
		if token := os.Getenv("SLACK_BOT_TOKEN"); opts.slackChannel != "" && token != "" {
			notify(ctx, notifier.NewSlackNotifier(token, opts.slackChannel, os.Getenv("SLACK_MENTION")), collection, logger)
		}
	}

	if len(alerts) == 0 {
		logger.Error().Strs("sources", names).Msg("no alerts collected from any active source")
		return errNoAlerts
	}
	return nil
}

func writeOutputs(ctx context.Context, root string, opts options, alerts []domain.RegulatoryAlert, logger zerolog.Logger) error {
	output := opts.output
	if output == "" {
		output = filepath.Join(root, defaultOutput)
	}
	if err := exporter.WriteCSV(output, alerts); err != nil {
		logger.Error().Err(err).Str("path", output).Msg("failed to write alerts")
		return err
	}
	logger.Info().Int("alerts", len(alerts)).Str("path", output).Msg("wrote alerts")

	if opts.stixOutput != "" {
		bundle, err := exporter.NewSTIXExporter().Export(alerts)
		if err != nil {
			return err
		}
		if err := writeFile(opts.stixOutput, bundle); err != nil {
			return err
		}
		logger.Info().Str("path", opts.stixOutput).Msg("wrote STIX bundle")
	}

	if opts.cefOutput != "" {
		if err := writeFile(opts.cefOutput, exporter.NewCEFExporter().Export(alerts)); err != nil {
			return err
		}
		logger.Info().Str("path", opts.cefOutput).Msg("wrote CEF events")
	}

	if opts.databaseURL != "" {
		if err := storeAlerts(ctx, opts.databaseURL, alerts, logger); err != nil {
			logger.Error().Err(err).Msg("failed to store alerts")
			return err
		}
	}

	return nil
}

func storeAlerts(ctx context.Context, dbURL string, alerts []domain.RegulatoryAlert, logger zerolog.Logger) error {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)
	saved, err := service.StoreAlerts(ctx, repo, alerts, service.DefaultBatchSize, logger)
	if err != nil {
		return err
	}

	counts, err := repo.CountBySource(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("saved", saved).Interface("stored_by_source", counts).Msg("alerts stored")
	return nil
}

// notify posts the run summary. A failed post never fails the run.
func notify(ctx context.Context, n ports.Notifier, summary domain.IngestionSummary, logger zerolog.Logger) {
	if err := n.NotifyIngestion(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("failed to post run summary")
		return
	}
	logger.Info().Msg("posted run summary")
}

func printDryRun(out io.Writer, alerts []domain.RegulatoryAlert) {
	fmt.Fprintf(out, "\n=== Dry-run: showing first %d of %d alert(s) ===\n\n", min(dryRunPreview, len(alerts)), len(alerts))
	for i, a := range alerts {
		if i == dryRunPreview {
			break
		}
		fmt.Fprintf(out, "  [%s] %s | %s | %s | %s | TPs: [%s]\n",
			a.Source, a.AlertID, a.Title, a.Date, a.Category, strings.Join(a.MappedTPIDs, ", "))
	}
	if len(alerts) > dryRunPreview {
		fmt.Fprintf(out, "\n  ... and %d more alert(s).\n", len(alerts)-dryRunPreview)
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

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
