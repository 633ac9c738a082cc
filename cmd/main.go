package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/autocal/internal/adapters/repository"
	service "github.com/okian/autocal/internal/app"
	"github.com/okian/autocal/internal/config"
	"github.com/okian/autocal/internal/domain/calibration"
	"github.com/okian/autocal/pkg/logger"
	"github.com/okian/autocal/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	args := os.Args[1:]
	inputs := cfg.Inputs
	if len(args) > 0 {
		inputs = args
	}
	if len(inputs) == 0 {
		os.Stderr.WriteString("no inputs: pass recording paths as arguments or set AUTOCAL_INPUTS\n")
		return 2
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithOutputDir(cfg.OutputDir),
		service.WithSamplingRate(cfg.SamplingRate),
		service.WithCalibrator(calibration.New(
			calibration.WithSphereCriterion(cfg.SphereCriterion),
			calibration.WithMinHours(cfg.MinHours),
			calibration.WithStillCriterion(cfg.StillCriterion),
			calibration.WithMaxIterations(cfg.MaxIterations),
			calibration.WithTolerance(cfg.Tolerance),
			calibration.WithStatsWindow(cfg.StatsWindowSeconds),
			calibration.WithLogger(log.Named("calibration")),
		)),
	)

	outcomes, err := svc.Run(ctx, inputs)
	if err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		return 1
	}

	failures := printSummary(outcomes)
	if failures > 0 {
		return 1
	}
	return 0
}

// printSummary writes the worst-first outcome table to stdout and
// returns the number of failed jobs.
func printSummary(outcomes []repository.Outcome) int {
	failures := 0
	for _, o := range outcomes {
		switch {
		case o.Failed():
			failures++
			fmt.Printf("FAIL  %s  %s\n", o.Path, o.Err)
		case !o.Calibrated:
			fmt.Printf("SKIP  %s  %s\n", o.Path, o.Diagnostic)
		default:
			fmt.Printf("OK    %s  errStart=%.5f errEnd=%.5f scale=%.4v offset=%.4v\n",
				o.Path, o.ErrStart, o.ErrEnd, o.Scale, o.Offset)
		}
	}
	return failures
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
