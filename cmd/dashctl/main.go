package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/cmd/dashctl/cli"
	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/reports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg    *app.Config
		logger *slog.Logger
	)
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Operate the finance dashboard from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			logger = app.NewLogger(cfg)
			return nil
		},
	}

	openReports := func(ctx context.Context) (cli.ReportBuilder, func(), error) {
		store, err := app.OpenStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		svc, err := app.NewReportService(cfg, store.Reader, nil, nil, logger)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return svc, store.Close, nil
	}
	openCache := func(ctx context.Context) (*reports.Cache, func(), error) {
		client := app.ConnectRedis(ctx, cfg, logger)
		if client == nil {
			return nil, func() {}, nil
		}
		return reports.NewCache(client, cfg.ReportCacheTTL), func() { _ = client.Close() }, nil
	}

	root.AddCommand(
		cli.NewReportCmd(openReports),
		cli.NewJobsCmd(func() string { return cfg.RedisAddr }),
		cli.NewMigrateCmd(func() string { return cfg.SQLitePath }),
		cli.NewCacheCmd(openCache),
	)
	return root
}
