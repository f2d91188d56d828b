package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtao-god/solsignal-reports/pkg/adapters"
	"github.com/rtao-god/solsignal-reports/pkg/runtime/terminal/export"
)

type ViewCmd struct {
	flags    *SourceFlags
	factory  EnvFactory
	view     viewFlags
	asJSON   bool
	reporter *export.Reporter
}

func NewViewCmd(factory EnvFactory, flags *SourceFlags, reporter *export.Reporter) *cobra.Command {
	vc := &ViewCmd{flags: flags, factory: factory, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Render a report view",
		RunE:  vc.run,
	}

	vc.view.register(cmd)
	cmd.Flags().BoolVar(&vc.asJSON, "json", false, "Print the view as JSON")

	return cmd
}

func (vc *ViewCmd) run(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, vc.factory, vc.flags, func(env *Env) error {
		view, err := env.Service.BuildView(cmd.Context(), vc.view.kind, vc.view.query())
		if err != nil {
			return fmt.Errorf("failed to build %s view: %w", vc.view.kind, err)
		}

		if vc.asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(adapters.MapDomainViewToAPI(view))
		}
		return vc.reporter.Handle(view)
	})
}
