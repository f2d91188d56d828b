package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rtao-god/solsignal-reports/pkg/runtime/terminal/commands"
	"github.com/rtao-god/solsignal-reports/pkg/services/config"
	"github.com/rtao-god/solsignal-reports/pkg/services/report"
	"github.com/rtao-god/solsignal-reports/pkg/store/client"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/snapshot"
	"github.com/rtao-god/solsignal-reports/pkg/store/objectstore"
)

// DefaultEnvFactory builds the report service from the root flags. --file
// skips the backend entirely; otherwise settings and profiles decide the
// upstream. Flags override settings.
func DefaultEnvFactory(logger zerolog.Logger) commands.EnvFactory {
	return func(ctx context.Context, flags commands.SourceFlags) (*commands.Env, error) {
		settings, err := config.LoadSettings(flags.ConfigPath)
		if err != nil {
			return nil, err
		}
		if flags.Profile != "" {
			settings.Upstream.Profile = flags.Profile
			settings.Upstream.BaseURL = ""
		}
		if flags.DbPath != "" {
			settings.Storage.DbPath = flags.DbPath
		}
		if flags.S3Bucket != "" {
			settings.Export.S3Bucket = flags.S3Bucket
		}
		if flags.S3Prefix != "" {
			settings.Export.S3Prefix = flags.S3Prefix
		}

		var source report.Source
		if flags.File != "" {
			source = client.FileSource{Path: flags.File}
		} else {
			profile, err := config.ResolveUpstream(ctx, settings.Upstream)
			if err != nil {
				return nil, err
			}
			opts := client.DefaultOptions()
			opts.Timeout = settings.Upstream.Timeout
			opts.RetryMax = settings.Upstream.RetryMax
			source, err = client.NewReportClient(*profile, opts, logger)
			if err != nil {
				return nil, err
			}
		}

		env := &commands.Env{Close: func() error { return nil }}

		if flags.DbPath != "" {
			db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Storage.DbPath})
			if err != nil {
				return nil, fmt.Errorf("failed to open snapshot database: %w", err)
			}
			env.Close = db.Close
			env.Snapshots, err = snapshot.NewStore(db)
			if err != nil {
				return nil, errors.Join(err, db.Close())
			}
		}

		if settings.Export.S3Bucket != "" {
			awsCfg, err := objectstore.LoadConfig(ctx, settings.Export.AWSProfile, settings.Export.AWSRegion)
			if err != nil {
				return nil, errors.Join(err, env.Close())
			}
			env.Uploader, err = objectstore.NewS3Uploader(*awsCfg, settings.Export.S3Bucket, settings.Export.S3Prefix)
			if err != nil {
				return nil, errors.Join(err, env.Close())
			}
		}

		env.Service, err = report.NewService(report.Options{
			Source:        source,
			Snapshots:     env.Snapshots,
			KeepSnapshots: settings.Storage.KeepSnapshots,
			CacheTTL:      settings.Upstream.CacheTTL,
			Metrics:       report.NewMetrics(prometheus.NewRegistry()),
		})
		if err != nil {
			return nil, errors.Join(err, env.Close())
		}

		return env, nil
	}
}
