package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mongomark/internal/banner"
	"mongomark/internal/corpus"
	"mongomark/internal/harness"
	"mongomark/internal/logger"
	"mongomark/internal/report"
	"mongomark/internal/scenarios"
)

var (
	cfgFile string

	// CLI Flags
	uri        string
	dataDir    string
	iterations int
	timeLimit  int
	numDocs    int
	chunkSize  int
	fast       bool
	only       []string
	outPrefix  string
	verbose    bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "mongomark",
	Short: "MongoMark - MongoDB Driver Micro-Benchmarks",
	Long: `
MongoMark runs the standard driver performance benchmark suite against
a live MongoDB deployment and reports one nearest-rank median latency
per scenario.

Each scenario's task is executed up to --iterations times or until the
--time-limit wall-clock budget runs out, whichever comes first.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuite()
	},
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mongomark.yaml)")

	rootCmd.Flags().StringVarP(&uri, "uri", "u", "mongodb://localhost:27017", "MongoDB connection string")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "performance_testdata", "Directory holding (or receiving) the test datasets")
	rootCmd.Flags().IntVarP(&iterations, "iterations", "n", harness.DefaultMaxIterations, "Max task iterations per scenario")
	rootCmd.Flags().IntVarP(&timeLimit, "time-limit", "t", int(harness.DefaultMaxElapsed/time.Second), "Wall-clock budget per scenario (s)")
	rootCmd.Flags().IntVar(&numDocs, "docs", harness.DefaultNumDocs, "Documents per task for single/multi-doc scenarios")
	rootCmd.Flags().IntVar(&chunkSize, "chunk-size", harness.DefaultChunkSize, "Concurrent work units per batch chunk")
	rootCmd.Flags().BoolVar(&fast, "fast", false, "Smoke mode: 1 iteration, 30s budget, 10 docs")
	rootCmd.Flags().StringSliceVarP(&only, "scenario", "s", nil, "Run only the named scenarios (repeatable)")
	rootCmd.Flags().StringVarP(&outPrefix, "out", "o", "", "Output filename prefix for the JSON report")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the full latency table after the run")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	viper.BindPFlag("uri", rootCmd.Flags().Lookup("uri"))
	viper.BindPFlag("data-dir", rootCmd.Flags().Lookup("data-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".mongomark")
		}
	}
	viper.SetEnvPrefix("mongomark")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// buildConfig assembles the immutable iteration budget from flags and
// environment. FAST_PERF_TESTS is honored so existing CI hooks keep
// working.
func buildConfig() harness.Config {
	if fast || os.Getenv("FAST_PERF_TESTS") != "" {
		return harness.FastConfig()
	}

	cfg := harness.DefaultConfig()
	cfg.MaxIterations = iterations
	cfg.MaxElapsed = time.Duration(timeLimit) * time.Second
	cfg.NumDocs = numDocs
	cfg.ChunkSize = chunkSize
	return cfg
}

func filterSuite(suite []harness.Scenario, names []string) []harness.Scenario {
	if len(names) == 0 {
		return suite
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	var kept []harness.Scenario
	for _, s := range suite {
		if slices.Contains(lowered, strings.ToLower(s.Name())) {
			kept = append(kept, s)
		}
	}
	return kept
}

func runSuite() error {
	log := logger.New(logLevel)
	cfg := buildConfig()

	runner, err := harness.NewRunner(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(viper.GetString("uri")))
	if err != nil {
		return fmt.Errorf("connect %s: %w", viper.GetString("uri"), err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("ping %s: %w", viper.GetString("uri"), err)
	}

	if err := os.MkdirAll(viper.GetString("data-dir"), 0o755); err != nil {
		return err
	}
	store := corpus.NewStore(viper.GetString("data-dir"), log)
	if err := store.Ensure(ctx); err != nil {
		return err
	}

	suite := filterSuite(scenarios.All(scenarios.Deps{
		Client: client,
		Corpus: store,
		Cfg:    cfg,
	}), only)
	if len(suite) == 0 {
		return fmt.Errorf("no scenarios match %v", only)
	}

	dropDB := func() {
		if err := client.Database(scenarios.DBName).Drop(ctx); err != nil {
			log.WithError(err).Warn("drop database failed")
		}
	}

	var results []*harness.Result
	var failures int

	for _, sc := range suite {
		// Logged before starting so a killed run still names the
		// scenario it died in.
		log.WithScenario(sc.Name()).Debug("starting")
		dropDB()

		if setup, ok := sc.(scenarios.Setupper); ok {
			if err := setup.Setup(ctx); err != nil {
				log.WithScenario(sc.Name()).WithError(err).Error("setup failed")
				failures++
				dropDB()
				continue
			}
		}

		res, err := runner.Run(ctx, sc)
		dropDB()
		if err != nil {
			// The wrapped error names the failing iteration or batch
			// chunk; no percentile is printed for a failed run.
			log.WithError(err).Error("scenario failed")
			failures++
			continue
		}

		line, err := report.Line(res)
		if err != nil {
			return err
		}
		fmt.Println(line)
		results = append(results, res)
	}

	if verbose && len(results) > 0 {
		table, err := report.Table(results)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(table)
	}

	if outPrefix != "" && len(results) > 0 {
		path := outPrefix + ".json"
		if err := report.Export(path, cfg, results); err != nil {
			return err
		}
		log.WithField("path", path).Info("report written")
	}

	if failures > 0 {
		return fmt.Errorf("%d scenario(s) failed", failures)
	}
	return nil
}
