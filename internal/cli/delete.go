package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [branch]",
		Short: "Delete a branch and move its children onto its parent",
		Long: `Delete a branch and move its children onto its parent.

The children are marked stale; run st restack to rebase them.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.DeleteOptions{Force: force}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.DeleteAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation.")

	return cmd
}
