package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newMoveCmd() *cobra.Command {
	var (
		source string
		onto   string
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Rebase a branch and its descendants onto a new parent",
		Long: `Rebase a branch and its descendants onto a new parent.

Defaults to moving the current branch. Without --onto you are asked to pick
the new parent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.MoveAction(ctx, actions.MoveOptions{Source: source, Onto: onto})
			})
		},
	}

	cmd.Flags().StringVarP(&onto, "onto", "o", "", "The new parent branch.")
	cmd.Flags().StringVar(&source, "source", "", "The branch to move. Defaults to the current branch.")
	_ = cmd.RegisterFlagCompletionFunc("onto", common.CompleteBranches)
	_ = cmd.RegisterFlagCompletionFunc("source", common.CompleteBranches)

	return cmd
}
