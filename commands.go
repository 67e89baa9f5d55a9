package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/algoscope/internal/api"
	"github.com/example/algoscope/internal/config"
	"github.com/example/algoscope/internal/curriculum"
	"github.com/example/algoscope/internal/database"
	"github.com/example/algoscope/internal/importer"
	"github.com/example/algoscope/internal/invariants"
	"github.com/example/algoscope/internal/kvstore"
	"github.com/example/algoscope/internal/logging"
	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/scheduler"
	"github.com/example/algoscope/internal/simulation"
	"github.com/example/algoscope/internal/telemetry"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var errValidationFailed = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:           "algoscope",
	Short:         "Algorithm visualizer traces and mastery tracking",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the review reminder scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Manage the SQL schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Print the state trace of a variant as JSON",
	Args:  cobra.NoArgs,
	RunE:  runTrace,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check curriculum data files",
}

var validateFoundationsCmd = &cobra.Command{
	Use:   "foundations <file>",
	Short: "Check that core patterns carry structured templates",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateFoundations,
}

var validateProblemsCmd = &cobra.Command{
	Use:   "problems <file>",
	Short: "Check problem classifications against the taxonomy",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateProblems,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk import practice scores from .xlsx or .csv",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var (
	traceVariant string
	traceArray   string
	traceTarget  int
	traceK       int
	traceRandom  int
	traceSeed    int64

	importSheet       string
	importStartRow    int
	importStopOnError bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "algoscope.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	traceCmd.Flags().StringVar(&traceVariant, "variant", "", "variant id (see GET /api/trace/variants)")
	traceCmd.Flags().StringVar(&traceArray, "array", "", "comma separated input, e.g. 1,3,5,7")
	traceCmd.Flags().IntVar(&traceTarget, "target", 0, "target value for pair sum, search and variable window")
	traceCmd.Flags().IntVar(&traceK, "k", 0, "window size or distinct limit")
	traceCmd.Flags().IntVar(&traceRandom, "random", 0, "generate a random input of this size instead of --array")
	traceCmd.Flags().Int64Var(&traceSeed, "seed", 0, "seed for --random (0 uses the clock)")
	_ = traceCmd.MarkFlagRequired("variant")

	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name for .xlsx files")
	importCmd.Flags().IntVar(&importStartRow, "start-row", 0, "first data row, 1-based")
	importCmd.Flags().BoolVar(&importStopOnError, "stop-on-error", false, "abort at the first invalid row")

	validateCmd.AddCommand(validateFoundationsCmd, validateProblemsCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, traceCmd, validateCmd, importCmd)
}

// openStore opens the configured progress store, migrating SQL schemas
// when asked to.
func openStore(migrate bool) (progress.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return progress.NewMemoryStore(), nil
	case config.DriverBadger:
		return kvstore.Open(kvstore.DefaultConfig(cfg.Database.DSN), logger)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.MigrateUp(logger); err != nil {
			db.Close()
			return nil, err
		}
	}
	return database.NewProgressRepository(db), nil
}

func loadIndex() (*curriculum.Index, error) {
	var cats []curriculum.Category
	if path := cfg.Curriculum.FoundationsPath; path != "" {
		var err error
		cats, err = curriculum.Load(path)
		if err != nil {
			return nil, err
		}
		for _, msg := range curriculum.ValidateFoundations(cats, curriculum.RequiredPatterns, curriculum.RequiredLanguages) {
			logger.Warn("foundations check", zap.String("problem", msg))
		}
	}
	return curriculum.NewIndex(cats, cfg.Tracks), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	store, err := openStore(cfg.IsSQL() && cfg.Database.MigrateOnStart)
	if err != nil {
		return err
	}
	defer store.Close()

	index, err := loadIndex()
	if err != nil {
		return err
	}

	svc := progress.NewService(store, cfg.ProgressService(), logger)

	pinger, _ := store.(api.Pinger)
	handlers := api.NewHandlers(svc, index, cfg.Tracks, invariants.Default(), cfg.Progress.DueLimit, pinger, logger)
	serverCfg := api.ServerConfig{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		WriteRPS:        cfg.Server.WriteRPS,
		WriteBurst:      cfg.Server.WriteBurst,
		ServiceName:     cfg.Tracing.ServiceName,
	}
	server := api.NewServer(api.NewRouter(handlers, serverCfg, logger), serverCfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(svc, scheduler.LogNotifier{Logger: logger}, scheduler.Config{
			Interval:   cfg.Scheduler.Interval,
			StartHour:  cfg.Scheduler.StartHour,
			EndHour:    cfg.Scheduler.EndHour,
			MaxModules: cfg.Progress.DueLimit,
		}, logger)
		g.Go(func() error { return sched.Run(gctx) })
	}

	logger.Info("algoscope started",
		zap.String("addr", cfg.Server.Addr),
		zap.String("driver", cfg.Database.Driver))
	return g.Wait()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if !cfg.IsSQL() {
		return fmt.Errorf("driver %q has no schema migrations", cfg.Database.Driver)
	}
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	switch args[0] {
	case "up":
		return db.MigrateUp(logger)
	case "down":
		return db.MigrateDown(logger)
	default:
		version, dirty, err := db.MigrateVersion(logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
		return nil
	}
}

func runTrace(cmd *cobra.Command, args []string) error {
	var input []int
	target := traceTarget

	if traceRandom > 0 {
		seed := traceSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		input = simulation.SampleInput(rng, traceVariant, traceRandom)
		if !cmd.Flags().Changed("target") {
			target = simulation.SampleTarget(rng, traceVariant, input)
		}
	} else {
		var err error
		input, err = parseInts(traceArray)
		if err != nil {
			return err
		}
	}

	trace, err := simulation.Generate(traceVariant, input, simulation.Params{Target: target, K: traceK})
	if err != nil {
		return fmt.Errorf("%w (supported: %s)", err, strings.Join(simulation.Variants(), ", "))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(trace)
}

func parseInts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid array element %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func runValidateFoundations(cmd *cobra.Command, args []string) error {
	cats, err := curriculum.Load(args[0])
	if err != nil {
		return err
	}
	msgs := curriculum.ValidateFoundations(cats, curriculum.RequiredPatterns, curriculum.RequiredLanguages)
	return reportValidation(cmd, msgs, "All core patterns are strictly compliant.")
}

func runValidateProblems(cmd *cobra.Command, args []string) error {
	problems, err := curriculum.LoadProblems(args[0])
	if err != nil {
		return err
	}
	msgs := curriculum.ValidateProblems(problems, curriculum.DefaultTaxonomy())
	return reportValidation(cmd, msgs, "Validation passed! All problems align with taxonomy.")
}

func reportValidation(cmd *cobra.Command, msgs []string, okMsg string) error {
	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintln(out, okMsg)
		return nil
	}
	fmt.Fprintf(out, "Validation failed with %d errors:\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintln(out, m)
	}
	return fmt.Errorf("%w: %d problems", errValidationFailed, len(msgs))
}

func runImport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg.IsSQL() && cfg.Database.MigrateOnStart)
	if err != nil {
		return err
	}
	defer store.Close()

	icfg := importer.DefaultImportConfig()
	icfg.FilePath = args[0]
	icfg.SheetName = cfg.Import.SheetName
	icfg.SkipInvalid = cfg.Import.SkipInvalid && !importStopOnError
	if !cfg.Import.HasHeader {
		icfg.StartRow = 1
	}
	if importSheet != "" {
		icfg.SheetName = importSheet
	}
	if importStartRow > 0 {
		icfg.StartRow = importStartRow
	}

	svc := progress.NewService(store, cfg.ProgressService(), logger)
	res, err := importer.ImportScores(cmd.Context(), icfg, svc)
	if res != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed: %d, applied: %d, skipped: %d, errors: %d\n",
			res.TotalProcessed, res.Applied, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintln(out, e)
		}
	}
	return err
}
