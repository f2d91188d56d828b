package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type SnapshotsCmd struct {
	flags   *SourceFlags
	factory EnvFactory
	kind    string
	limit   int
	keep    int
}

func NewSnapshotsCmd(factory EnvFactory, flags *SourceFlags) *cobra.Command {
	sc := &SnapshotsCmd{flags: flags, factory: factory}
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List or prune stored report snapshots (requires --db)",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.kind, "kind", "", "Report kind")
	cmd.Flags().IntVar(&sc.limit, "limit", 10, "Number of snapshots to list, 0 for all")
	cmd.Flags().IntVar(&sc.keep, "prune", -1, "Keep only the newest N snapshots")

	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func (sc *SnapshotsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	return withEnv(cmd, sc.factory, sc.flags, func(env *Env) error {
		if env.Snapshots == nil {
			return fmt.Errorf("snapshots require --db")
		}

		if sc.keep >= 0 {
			removed, err := env.Snapshots.Prune(ctx, sc.kind, sc.keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshots of %s\n", removed, sc.kind)
			return nil
		}

		snapshots, err := env.Snapshots.List(ctx, sc.kind, sc.limit)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No snapshots stored for %s\n", sc.kind)
			return nil
		}
		for _, s := range snapshots {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
				s.FetchedAt.Format(time.RFC3339), s.ID, s.ReportID, s.Title)
		}
		return nil
	})
}
