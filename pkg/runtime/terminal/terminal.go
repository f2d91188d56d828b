package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtao-god/solsignal-reports/pkg/runtime/terminal/commands"
	"github.com/rtao-god/solsignal-reports/pkg/runtime/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	factory  commands.EnvFactory
	flags    commands.SourceFlags
	reporter *export.Reporter
	summary  *export.SummaryReporter
	output   io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Factory commands.EnvFactory
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		factory:  opts.Factory,
		reporter: export.NewReporter(opts.Output),
		summary:  export.NewSummaryReporter(opts.Output),
		output:   opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args for the next Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reports",
		Short:         "Browse and export SolSignal backtest reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.flags.ConfigPath, "config", "c", "", "Path to the settings file")
	flags.StringVar(&cli.flags.Profile, "profile", "", "Upstream profile name from the profiles file")
	flags.StringVar(&cli.flags.File, "file", "", "Read the report from a JSON file instead of the backend")
	flags.StringVar(&cli.flags.DbPath, "db", "", "DuckDB file for report snapshots")
	flags.StringVar(&cli.flags.S3Bucket, "s3-bucket", "", "S3 bucket for uploaded exports")
	flags.StringVar(&cli.flags.S3Prefix, "s3-prefix", "", "Key prefix for uploaded exports")

	cmd.AddCommand(commands.NewKindsCmd(cli.factory, &cli.flags))
	cmd.AddCommand(commands.NewViewCmd(cli.factory, &cli.flags, cli.reporter))
	cmd.AddCommand(commands.NewTabsCmd(cli.factory, &cli.flags, cli.summary))
	cmd.AddCommand(commands.NewCapabilitiesCmd(cli.factory, &cli.flags, cli.summary))
	cmd.AddCommand(commands.NewGroupsCmd(cli.factory, &cli.flags, cli.summary))
	cmd.AddCommand(commands.NewExportCmd(cli.factory, &cli.flags))
	cmd.AddCommand(commands.NewSnapshotsCmd(cli.factory, &cli.flags))

	return cmd
}
