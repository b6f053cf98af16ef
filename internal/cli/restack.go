package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

// newRestackCmd creates the restack command
func newRestackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restack [branch]",
		Short: "Rebase every stale branch in the stack onto its parent",
		Long: `Rebase every stale branch in the stack onto its parent.

Starts from the given branch (default: the current branch) and walks its
descendants. If a rebase hits a conflict, st stops and waits: resolve the
conflict, then run st continue, or st abort to roll everything back.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.RestackOptions{}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.RestackAction(ctx, opts)
			})
		},
	}
}
