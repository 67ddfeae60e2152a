package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ContentAgent/internal/app"
	"ContentAgent/internal/config"
	"ContentAgent/internal/logging"
)

const (
	exitOK            = 0
	exitConfigError   = 1
	exitPipelineError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	once := flag.Bool("once", false, "run the pipeline once and exit instead of scheduling")
	flag.Parse()

	cfg := config.Load(*configPath)
	logger := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfigError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return exitConfigError
	}
	defer application.Close()

	if *once {
		result := application.RunOnce(ctx)
		if !result.Success {
			logger.Error("run produced no selection", "errors", result.Metrics.Errors)
			return exitPipelineError
		}
		logger.Info("run complete", "csv", result.CSVPath, "selected", result.Metrics.SelectedCount)
		return exitOK
	}

	if err := application.RunScheduled(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		return exitPipelineError
	}
	return exitOK
}
