package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/services/report"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/snapshot"
	"github.com/rtao-god/solsignal-reports/pkg/store/objectstore"
)

// SourceFlags are the root flags that decide where reports come from.
type SourceFlags struct {
	ConfigPath string
	Profile    string
	File       string
	DbPath     string
	S3Bucket   string
	S3Prefix   string
}

// Env holds what a command needs to run. Snapshots and Uploader are nil
// unless --db and --s3-bucket are set.
type Env struct {
	Service   report.Service
	Snapshots snapshot.Store
	Uploader  objectstore.Uploader
	Close     func() error
}

type EnvFactory func(ctx context.Context, flags SourceFlags) (*Env, error)

type viewFlags struct {
	kind   string
	group  string
	bucket string
	metric string
	zonal  string
	tpsl   string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "Report kind (see `reports kinds`)")
	cmd.Flags().StringVar(&f.group, "group", "", "Section group to show (default all)")
	cmd.Flags().StringVar(&f.bucket, "bucket", domain.ModeAll, "Bucket mode: all, daily, intraday, delayed")
	cmd.Flags().StringVar(&f.metric, "metric", domain.ModeAll, "Metric mode: all, real, no-biggest-liq-loss")
	cmd.Flags().StringVar(&f.zonal, "zonal", domain.ModeAll, "Zonal mode: all or a zonal mode tag")
	cmd.Flags().StringVar(&f.tpsl, "tpsl", string(domain.TpSlAll), "TP/SL mode: all, dynamic, static")

	_ = cmd.MarkFlagRequired("kind")
}

func (f *viewFlags) query() domain.ViewQuery {
	return domain.ViewQuery{
		Group:  f.group,
		Bucket: f.bucket,
		Metric: f.metric,
		Zonal:  f.zonal,
		TpSl:   domain.TpSlMode(f.tpsl),
	}
}

// withEnv opens an Env for the duration of fn.
func withEnv(cmd *cobra.Command, factory EnvFactory, flags *SourceFlags, fn func(env *Env) error) error {
	env, err := factory(cmd.Context(), *flags)
	if err != nil {
		return fmt.Errorf("failed to open report source: %w", err)
	}
	defer func() {
		if env.Close != nil {
			_ = env.Close()
		}
	}()

	return fn(env)
}
