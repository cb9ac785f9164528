package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podbase-blog/config"
	"podbase-blog/db"
	"podbase-blog/feeder"
	"podbase-blog/logger"
	"podbase-blog/repositories"
)

func main() {
	var (
		interval time.Duration
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Import blog posts from the configured RSS/Atom feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitApp()
			cfg := config.GetConfig()
			logger.Init(cfg.Logging.Level, "blog-importer")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := db.Init(ctx, cfg.Mongo); err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = db.Disconnect(shutdownCtx)
			}()

			svc := NewImportService(
				feeder.NewFetcher(insecure),
				repositories.NewPostRepository(db.Database()),
				cfg.Feeds,
			)
			return run(ctx, svc, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat the import at this interval (0 runs once)")
	cmd.Flags().BoolVar(&insecure, "insecure", true, "skip TLS verification for feeds with broken certificate chains")

	if err := cmd.Execute(); err != nil {
		logger.Log.Errorf("importer failed: %v", err)
		os.Exit(1)
	}
}

// run 은 첫 수집을 즉시 1회 수행하고, interval 이 있으면 종료 신호까지 반복한다.
func run(ctx context.Context, svc *ImportService, interval time.Duration) error {
	if _, err := svc.RunOnce(ctx); err != nil {
		if interval <= 0 {
			return err
		}
		logger.Log.Errorf("import runOnce error: %v", err)
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := svc.RunOnce(ctx); err != nil {
				logger.Log.Errorf("import runOnce error: %v", err)
			}
		}
	}
}
