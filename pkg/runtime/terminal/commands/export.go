package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtao-god/solsignal-reports/pkg/services/export"
	"github.com/rtao-god/solsignal-reports/pkg/services/report"
	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
)

type ExportCmd struct {
	flags   *SourceFlags
	factory EnvFactory
	view    viewFlags
	table   int
	format  string
	sort    string
	desc    bool
	out     string
	noBOM   bool
	upload  bool
}

func NewExportCmd(factory EnvFactory, flags *SourceFlags) *cobra.Command {
	ec := &ExportCmd{flags: flags, factory: factory}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one table of a report view as CSV or XLSX",
		RunE:  ec.run,
	}

	ec.view.register(cmd)
	cmd.Flags().IntVar(&ec.table, "table", 0, "0-based table index within the view")
	cmd.Flags().StringVar(&ec.format, "format", string(export.FormatCSV), "Export format: csv or xlsx")
	cmd.Flags().StringVar(&ec.sort, "sort", "", "Column to sort rows by")
	cmd.Flags().BoolVar(&ec.desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&ec.out, "out", "", "Output file (default <kind>-table-<n>.<format>, - for stdout)")
	cmd.Flags().BoolVar(&ec.noBOM, "no-bom", false, "Omit the UTF-8 byte order mark from CSV output")
	cmd.Flags().BoolVar(&ec.upload, "upload", false, "Upload to the --s3-bucket instead of writing a file")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format, err := export.ParseFormat(ec.format)
	if err != nil {
		return err
	}

	sort := report.TableSort{Column: ec.sort, Direction: sections.SortAsc}
	if ec.desc {
		sort.Direction = sections.SortDesc
	}

	return withEnv(cmd, ec.factory, ec.flags, func(env *Env) error {
		table, err := env.Service.Table(ctx, ec.view.kind, ec.view.query(), ec.table, sort)
		if err != nil {
			return fmt.Errorf("failed to select table %d: %w", ec.table, err)
		}

		data, err := export.Encode(table, format, export.Options{BOM: !ec.noBOM})
		if err != nil {
			return err
		}

		name := export.FileName(ec.view.kind, ec.table, format)
		if ec.upload {
			if env.Uploader == nil {
				return fmt.Errorf("--upload requires --s3-bucket")
			}
			uri, err := env.Uploader.Upload(ctx, name, format.ContentType(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		}

		switch ec.out {
		case "-":
			_, err = cmd.OutOrStdout().Write(data)
			return err
		case "":
			ec.out = name
		}
		if err := os.WriteFile(ec.out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", ec.out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d rows)\n", ec.out, len(table.Rows))
		return nil
	})
}
