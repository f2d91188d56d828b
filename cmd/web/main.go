package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	handlers "github.com/rtao-god/solsignal-reports/pkg/handlers/report"
	"github.com/rtao-god/solsignal-reports/pkg/server"
	"github.com/rtao-god/solsignal-reports/pkg/services/config"
	"github.com/rtao-god/solsignal-reports/pkg/services/export"
	"github.com/rtao-god/solsignal-reports/pkg/services/report"
	"github.com/rtao-god/solsignal-reports/pkg/services/workflow"
	"github.com/rtao-god/solsignal-reports/pkg/store/client"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/snapshot"
	duckdbworkflow "github.com/rtao-god/solsignal-reports/pkg/store/duckdb/workflow"
	"github.com/rtao-god/solsignal-reports/pkg/store/objectstore"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for SolSignal reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file (SOLSIGNAL_* environment variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).Level(settings.Log.ZerologLevel()).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	upstream, err := config.ResolveUpstream(ctx, settings.Upstream)
	if err != nil {
		return fmt.Errorf("failed to resolve upstream: %w", err)
	}

	opts := client.DefaultOptions()
	opts.Timeout = settings.Upstream.Timeout
	opts.RetryMax = settings.Upstream.RetryMax
	reportClient, err := client.NewReportClient(*upstream, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to create report client: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Storage.DbPath})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	snapshotStore, err := snapshot.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	workflowStore, err := duckdbworkflow.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create workflow store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service, err := report.NewService(report.Options{
		Source:        reportClient,
		Snapshots:     snapshotStore,
		KeepSnapshots: settings.Storage.KeepSnapshots,
		CacheTTL:      settings.Upstream.CacheTTL,
		Metrics:       report.NewMetrics(registry),
	})
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	kinds := make([]string, 0)
	for _, k := range service.Kinds() {
		kinds = append(kinds, k.Kind)
	}
	workflowCtrl := workflow.NewController(service, workflowStore, kinds, workflow.RunnerConfig{
		Interval: settings.Refresh.Interval,
	})
	if settings.Refresh.Enabled {
		if err := workflowCtrl.Start(ctx); err != nil {
			return fmt.Errorf("failed to start snapshot refresh: %w", err)
		}
		defer func() {
			if err := workflowCtrl.Cancel(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to stop snapshot refresh")
			}
		}()
	}

	reports := handlers.Options{
		Service:   service,
		Refresher: workflowCtrl,
		Export:    export.Options{BOM: settings.Export.CSVBOM},
	}
	if settings.Export.S3Bucket != "" {
		awsCfg, err := objectstore.LoadConfig(ctx, settings.Export.AWSProfile, settings.Export.AWSRegion)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		reports.Uploader, err = objectstore.NewS3Uploader(*awsCfg, settings.Export.S3Bucket, settings.Export.S3Prefix)
		if err != nil {
			return fmt.Errorf("failed to create export uploader: %w", err)
		}
	}

	logger.Info().
		Str("upstream", upstream.BaseURL).
		Str("profile", upstream.Name).
		Str("db", settings.Storage.DbPath).
		Bool("refresh", settings.Refresh.Enabled).
		Msg("configuration loaded")

	addr := net.JoinHostPort(settings.Server.Host, strconv.Itoa(settings.Server.Port))
	web := server.NewWebAPI(server.Config{
		Addr:            addr,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Reports:  reports,
			Gatherer: registry,
			Logger:   logger,
		},
	})

	return web.Start(ctx)
}
