package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newLogCmd() *cobra.Command {
	var opts actions.LogOptions

	cmd := &cobra.Command{
		Use:     "log [branch]",
		Aliases: []string{"l", "ls"},
		Short:   "Draw the tracked branches as a tree",
		Long: `Draw the tracked branches as a tree.

With a branch only that branch and its descendants are shown. Branches that
need a restack are flagged.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.LogAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.ShowUntracked, "untracked", "u", false, "Also list branches st does not track.")
	cmd.Flags().BoolVar(&opts.Commits, "commits", false, "Show how many commits each branch adds.")

	return cmd
}
