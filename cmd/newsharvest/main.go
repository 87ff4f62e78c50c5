package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"newsharvest/internal/app"
	"newsharvest/internal/config"
	"newsharvest/internal/domain"
	"newsharvest/internal/logging"
)

func main() {
	sourceID := flag.String("source", "", "run a single source by id and print its summary")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *sourceID != "" {
		summary, err := application.RunSource(ctx, *sourceID)
		if err != nil {
			logger.Error("source run failed", "source", *sourceID, "error", err)
			os.Exit(1)
		}
		printJSON(summary)
		if summary.Status == domain.StatusFailed {
			os.Exit(1)
		}
		return
	}

	if application.Scheduled() {
		if err := application.StartScheduler(ctx); err != nil {
			logger.Error("scheduler failed", "error", err)
			os.Exit(1)
		}
		<-ctx.Done()
		_ = application.StopScheduler(context.Background())
		return
	}

	result := application.RunOnce(ctx)
	printJSON(result)
	if result.Status == domain.RunFailed {
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
