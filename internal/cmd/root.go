// Package cmd wires the reliefmesh command line. Flags bind to viper so
// every option is also settable via RELIEFMESH_* environment variables.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reliefmesh",
		Short:         "reliefmesh: coordinate disaster-relief supply runs",
		Long:          "reliefmesh runs a plan/retrieve/execute/evaluate loop over a relief mission: it plans supply demand, surveys affected sites, allocates available stock and iterates on the evaluator's critique until coverage meets the threshold or the iteration budget runs out.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	v := viper.New()
	v.SetEnvPrefix("RELIEFMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(v),
	)

	return rootCmd
}
