package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/runtime/terminal/export"
)

type summaryCmd struct {
	flags    *SourceFlags
	factory  EnvFactory
	view     viewFlags
	reporter *export.SummaryReporter
	show     func(*export.SummaryReporter, *domain.ReportView) error
}

func newSummaryCmd(
	use, short string,
	factory EnvFactory,
	flags *SourceFlags,
	reporter *export.SummaryReporter,
	show func(*export.SummaryReporter, *domain.ReportView) error,
) *cobra.Command {
	sc := &summaryCmd{flags: flags, factory: factory, reporter: reporter, show: show}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE:  sc.run,
	}
	sc.view.register(cmd)
	return cmd
}

func NewTabsCmd(factory EnvFactory, flags *SourceFlags, reporter *export.SummaryReporter) *cobra.Command {
	return newSummaryCmd("tabs", "List the tab anchors of a report view", factory, flags, reporter,
		(*export.SummaryReporter).Tabs)
}

func NewCapabilitiesCmd(factory EnvFactory, flags *SourceFlags, reporter *export.SummaryReporter) *cobra.Command {
	return newSummaryCmd("capabilities", "Show which view modes a report supports", factory, flags, reporter,
		(*export.SummaryReporter).Capabilities)
}

func NewGroupsCmd(factory EnvFactory, flags *SourceFlags, reporter *export.SummaryReporter) *cobra.Command {
	return newSummaryCmd("groups", "List the section groups of a report", factory, flags, reporter,
		(*export.SummaryReporter).Groups)
}

func (sc *summaryCmd) run(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, sc.factory, sc.flags, func(env *Env) error {
		view, err := env.Service.BuildView(cmd.Context(), sc.view.kind, sc.view.query())
		if err != nil {
			return fmt.Errorf("failed to build %s view: %w", sc.view.kind, err)
		}
		return sc.show(sc.reporter, view)
	})
}
