package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/recycling-locator/internal/acquisition"
	"github.com/jonathan/recycling-locator/internal/classification"
	"github.com/jonathan/recycling-locator/internal/config"
	"github.com/jonathan/recycling-locator/internal/db"
	"github.com/jonathan/recycling-locator/internal/fetch"
	"github.com/jonathan/recycling-locator/internal/interaction"
	"github.com/jonathan/recycling-locator/internal/llm"
	"github.com/jonathan/recycling-locator/internal/observability"
	"github.com/jonathan/recycling-locator/internal/pipeline"
	"github.com/jonathan/recycling-locator/internal/types"
)

const dbConnectTimeout = 5 * time.Second

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the directory and write normalized facility records",
	Long: `Search drives a browser through the Earth911 search form, extracts up to three
facility listings, classifies the materials each accepts and writes them to a JSON file.

When every attempt fails, a built-in sample document is used so a result file is always produced.

Examples:
  recycle_agent search --material Electronics --zip 10001
  recycle_agent search -m Batteries -z 94103 --out batteries.json --no-llm`,
	RunE: runSearch,
}

var (
	searchMaterial    string
	searchPostalCode  string
	searchOutputFile  string
	searchMaxRetries  int
	searchAPIKey      string
	searchNoLLM       bool
	searchHeadless    bool
	searchDatabaseURL string
	searchTier        string
	searchModel       string
)

func init() {
	searchCmd.Flags().StringVarP(&searchMaterial, "material", "m", "", "Material to search for (required)")
	searchCmd.Flags().StringVarP(&searchPostalCode, "zip", "z", "", "Postal code to search near (required)")
	searchCmd.Flags().StringVarP(&searchOutputFile, "out", "o", "", "Path to output JSON file (default \"earth911_results.json\", env RECYCLE_OUTPUT)")
	searchCmd.Flags().IntVar(&searchMaxRetries, "max-retries", acquisition.DefaultMaxRetries, "Number of browser attempts before using sample data")
	searchCmd.Flags().StringVar(&searchAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	searchCmd.Flags().BoolVar(&searchNoLLM, "no-llm", false, "Classify with keyword matching only")
	searchCmd.Flags().BoolVar(&searchHeadless, "headless", true, "Run the browser without a window")
	searchCmd.Flags().StringVar(&searchDatabaseURL, "database-url", "", "PostgreSQL URL for archiving runs (overrides DATABASE_URL env var)")

	searchCmd.Flags().StringVar(&searchTier, "tier", string(llm.TierLite), "Gemini model tier for classification (lite or standard)")
	searchCmd.Flags().StringVar(&searchModel, "model", "", "Override the Gemini model name for the selected tier")

	_ = searchCmd.MarkFlagRequired("material")
	_ = searchCmd.MarkFlagRequired("zip")

	rootCmd.AddCommand(searchCmd)
}

// loadConfig layers flags over the environment over defaults. Only flags
// the user set override the lower layers.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv(config.Defaults(), nil)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = searchAPIKey
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = searchDatabaseURL
	}
	if flags.Changed("out") {
		cfg.OutputPath = searchOutputFile
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = searchMaxRetries
	}
	if flags.Changed("tier") {
		cfg.ModelTier = searchTier
	}
	if flags.Changed("model") {
		cfg.Model = searchModel
	}
	cfg.Headless = searchHeadless
	cfg.DisableLLM = searchNoLLM
	cfg.Verbose = verbose

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	q, err := types.NewSearchQuery(searchMaterial, searchPostalCode)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := newLLMClient(ctx, cfg, logger)
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	archive, closeArchive := openArchive(ctx, cfg, logger)
	defer closeArchive()

	launcher := fetch.NewChromeLauncher(&fetch.Options{
		Headless:  cfg.Headless,
		Timeout:   fetch.DefaultTimeout,
		UserAgent: fetch.DefaultUserAgent,
	}, logger)
	acqOpts := acquisition.DefaultOptions()
	acqOpts.SearchURL = cfg.SearchURL
	acqOpts.MaxRetries = cfg.MaxRetries

	runner, err := pipeline.NewRunner(pipeline.Deps{
		Acquirer: acquisition.NewController(launcher, interaction.NewEngine(nil, logger), acqOpts, logger),
		Classifier: classification.NewEngine(client, &classification.Options{
			Tier:              llm.ModelTier(cfg.ModelTier),
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger),
		Archive: archive,
		Printer: observability.NewPrinter(cmd.OutOrStdout()),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, pipeline.RunOptions{
		Query:      q,
		OutputPath: cfg.OutputPath,
		SearchURL:  cfg.SearchURL,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n🎉 Search job completed with %d results!\n", len(report.Records))
	return nil
}

// newLLMClient returns nil when the remote classifier is disabled or
// cannot be created; classification then uses keyword matching only.
func newLLMClient(ctx context.Context, cfg config.Config, logger *zap.Logger) llm.Client {
	if !cfg.UseLLM() {
		logger.Info("remote classifier disabled, using keyword matching")
		return nil
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		logger.Warn("failed to create LLM client, using keyword matching", zap.Error(err))
		return nil
	}
	return client
}

// openArchive connects to the run archive when a database URL is set.
// Connection failures are logged and the run continues without archiving.
func openArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (pipeline.Archive, func()) {
	noop := func() {}
	if cfg.DatabaseURL == "" {
		return nil, noop
	}

	connectCtx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()

	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("run archive unavailable", zap.Error(err))
		return nil, noop
	}
	if err := database.EnsureSchema(connectCtx); err != nil {
		logger.Warn("run archive unavailable", zap.Error(err))
		database.Close()
		return nil, noop
	}
	return database, database.Close
}
