package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newInfoCmd() *cobra.Command {
	var stat bool

	cmd := &cobra.Command{
		Use:               "info [branch]",
		Short:             "Show a branch's parent, children, pull request and commits",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.InfoOptions{Stat: stat}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.InfoAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&stat, "stat", "s", false, "Show a diffstat against the parent.")

	return cmd
}
