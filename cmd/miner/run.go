package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wax-miner-go/internal/config"
	"wax-miner-go/internal/logging"
	"wax-miner-go/internal/metrics"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the mining daemon until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logging.Init(cfg.LogLevel)
			if err := cfg.Validate(); err != nil {
				return err
			}

			a := buildApp(cfg)
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics.Get().StartTime.Set(float64(time.Now().Unix()))

			if cfg.AdminAddr != "" {
				go func() {
					if err := a.admin.Run(ctx, cfg.AdminAddr); err != nil {
						slog.Error("admin_server_failed", slog.String("error", err.Error()))
					}
				}()
			}

			a.runner.Run(ctx)
			slog.Info("shutdown_complete")
			return nil
		},
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single account pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logging.Init(cfg.LogLevel)
			if err := cfg.Validate(); err != nil {
				return err
			}

			a := buildApp(cfg)
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.runner.RunCycle(ctx)
			return nil
		},
	}
}
