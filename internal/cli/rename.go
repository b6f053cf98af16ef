package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newRenameCmd() *cobra.Command {
	var (
		branch string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "rename [name]",
		Short: "Rename a branch and update everything stacked on it",
		Long: `Rename a branch and update everything stacked on it.

Defaults to the current branch. A pull request cannot follow a renamed head
branch, so a linked branch needs --force and loses its link.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.RenameOptions{BranchName: branch, Force: force}
				if len(args) > 0 {
					opts.NewName = args[0]
				}
				return actions.RenameAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "The branch to rename. Defaults to the current branch.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rename even if the branch has a pull request.")
	_ = cmd.RegisterFlagCompletionFunc("branch", common.CompleteBranches)

	return cmd
}
