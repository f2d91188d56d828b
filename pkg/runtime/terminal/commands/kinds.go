package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type KindsCmd struct {
	flags   *SourceFlags
	factory EnvFactory
}

func NewKindsCmd(factory EnvFactory, flags *SourceFlags) *cobra.Command {
	kc := &KindsCmd{flags: flags, factory: factory}
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported report kinds",
		RunE:  kc.run,
	}
}

func (kc *KindsCmd) run(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, kc.factory, kc.flags, func(env *Env) error {
		for _, k := range env.Service.Kinds() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t/reports/%s\n", k.Kind, k.Endpoint)
		}
		return nil
	})
}
