package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newCheckoutCmd() *cobra.Command {
	var trunk bool

	cmd := &cobra.Command{
		Use:               "checkout [branch]",
		Aliases:           []string{"co"},
		Short:             "Switch to a branch, picking from the tree when none is given",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.CheckoutOptions{Trunk: trunk}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.CheckoutAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&trunk, "trunk", "t", false, "Check out the trunk.")

	return cmd
}
