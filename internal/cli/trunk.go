package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newTrunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trunk",
		Short: "Manage trunk branches",
		Long: `Manage trunk branches.

Without a subcommand, checks out the primary trunk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.CheckoutAction(ctx, actions.CheckoutOptions{Trunk: true})
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "add <name>",
		Short:             "Track another long-lived branch as a trunk",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.TrunkAddAction(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the trunk branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, actions.TrunkListAction)
		},
	})

	return cmd
}
