package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/countme"
	"github.com/ygrebnov/countme/internal/config"
	"github.com/ygrebnov/countme/internal/workload"
	"github.com/ygrebnov/countme/promcount"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Seams replaced by tests.
var (
	loadConfig       = config.Load
	newSignalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

// newRootCmd builds and returns the root cobra command. Extracted from main so
// that tests can invoke it directly without spawning a subprocess.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "countme",
		Short: "Exercise and report countme instance counters",
		Long: `Runs allocation workloads over countme-instrumented types and reports
live, max_live and total instance counts per type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "bench",
		Short: "Create instances from several goroutines per type and report counts",
		RunE:  runBench,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "bench-single",
		Short: "Create and release instances on a single goroutine and report counts",
		RunE:  runBenchSingle,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the workload in a loop and expose counts on /metrics",
		RunE:  runServe,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			mode := "enabled"
			if !countme.Enabled {
				mode = "disabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "countme %s (commit: %s, built: %s, counting: %s)\n", version, commit, date, mode)
		},
	})

	return rootCmd
}

// setup loads configuration and initializes logging.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	initLogging(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	countme.Default().SetLogger(log.Logger)
	return cfg, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer reportAtExit(cmd.OutOrStdout(), cfg)

	ctx, cancel := newSignalContext(cmd.Context())
	defer cancel()

	start := time.Now()
	if err := workload.Multi(ctx, cfg.Workers, cfg.Iterations); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bench: %w", err)
	}
	log.Info().
		Int("workers", cfg.Workers).
		Int("iterations", cfg.Iterations).
		Dur("elapsed", time.Since(start)).
		Msg("bench finished")
	return nil
}

func runBenchSingle(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer reportAtExit(cmd.OutOrStdout(), cfg)

	start := time.Now()
	workload.Single(cfg.Iterations)
	log.Info().
		Int("iterations", cfg.Iterations).
		Dur("elapsed", time.Since(start)).
		Msg("bench finished")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.MetricsAddr == "" {
		return errors.New("serve: COUNTME_METRICS_ADDR is required")
	}
	defer reportAtExit(cmd.OutOrStdout(), cfg)

	ctx, cancel := newSignalContext(cmd.Context())
	defer cancel()

	reg := prometheus.NewRegistry()
	promcount.RegisterWith(reg, countme.SourceFunc(countme.GetAll))

	srv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      newMux(reg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
			cancel()
		}
	}()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	rounds := 0
	for ctx.Err() == nil {
		if err := workload.Multi(ctx, cfg.Workers, cfg.Iterations); err != nil && ctx.Err() == nil {
			return fmt.Errorf("serve: %w", err)
		}
		rounds++
		log.Debug().Int("round", rounds).Msg("workload round finished")
	}
	log.Info().Int("rounds", rounds).Msg("serve stopped")
	return nil
}

func newMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/counts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = countme.GetAll().WriteTo(w)
	})
	return mux
}

// reportAtExit emits the final counts once, on every exit path of a command.
func reportAtExit(out io.Writer, cfg *config.Config) {
	if !cfg.ReportOnExit {
		return
	}
	all := countme.GetAll()
	if cfg.ReportFormat == config.ReportLog {
		all.Log(log.Logger)
		return
	}
	if _, err := all.WriteTo(out); err != nil {
		log.Error().Err(err).Msg("write report")
	}
}

func initLogging(w io.Writer, level string, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}

	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
