package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newTrackCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "track [branch]",
		Short: "Start tracking an existing branch on top of a parent",
		Long: `Start tracking an existing branch on top of a parent.

Defaults to the current branch. Without --parent you are asked to pick one.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.TrackOptions{Parent: parent}
				if len(args) > 0 {
					opts.Branch = args[0]
				}
				return actions.TrackAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "The branch to track on top of.")
	_ = cmd.RegisterFlagCompletionFunc("parent", common.CompleteBranches)

	return cmd
}

func newUntrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "untrack [branch]",
		Short:             "Stop tracking a branch without touching it in git",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.UntrackOptions{}
				if len(args) > 0 {
					opts.Branch = args[0]
				}
				return actions.UntrackAction(ctx, opts)
			})
		},
	}
}
