package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newCreateCmd() *cobra.Command {
	var (
		message string
		all     bool
	)

	cmd := &cobra.Command{
		Use:     "create [name]",
		Aliases: []string{"c"},
		Short:   "Create a new branch on top of the current one and check it out",
		Long: `Create a new branch on top of the current one and check it out.

With --message the staged changes are committed to the new branch. Without a
name, the branch is named from the commit message using branch.pattern.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.CreateOptions{Message: message, All: all}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.CreateAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit the staged changes with this message.")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stage all changes, including untracked files, before committing.")

	return cmd
}
