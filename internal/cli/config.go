package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/config"
	"stacked.dev/st/internal/runtime"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the repository configuration",
		Long: `Show or change the repository configuration kept in .git/st/config.yaml.

Without a subcommand every effective value is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, actions.ConfigListAction)
		},
	}

	completeKeys := func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys, cobra.ShellCompDirectiveNoFileComp
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "get <key>",
		Short:             "Print one configuration value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ConfigGetAction(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:               "set <key> [value]",
		Short:             "Change a configuration value; omit the value to restore the default",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				value := ""
				if len(args) > 1 {
					value = args[1]
				}
				return actions.ConfigSetAction(ctx, args[0], value)
			})
		},
	})

	return cmd
}
