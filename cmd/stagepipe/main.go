package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ib-77/stagepipe/internal/config"
	"github.com/ib-77/stagepipe/internal/logging"
	"github.com/ib-77/stagepipe/internal/monitoring"
	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes one pipeline run and returns the exit status.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Parse(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "stagepipe: %v\n", err)
		return failure.ExitCode(err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(stderr, "stagepipe: logger: %v\n", err)
		return failure.ExitConfig
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()
	driver := pipeline.New(cfg.Pipeline(),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics))

	code := driver.Execute(ctx)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
			if code == failure.ExitOK {
				code = failure.ExitResource
			}
		}
	}
	return code
}
