package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newSubmitCmd() *cobra.Command {
	var (
		stack bool
		draft bool
	)

	cmd := &cobra.Command{
		Use:     "submit [branch]",
		Aliases: []string{"s"},
		Short:   "Push a branch and open or update its pull request",
		Long: `Push a branch and open or update its pull request.

Each pull request targets the branch's parent and carries a comment listing the
whole stack. With --stack every branch from the trunk up to the top of the
stack is submitted. Branches must be restacked first.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.SubmitOptions{Stack: stack, Draft: draft}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.SubmitAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&stack, "stack", false, "Submit every branch in the stack.")
	cmd.Flags().BoolVar(&draft, "draft", false, "Open new pull requests as drafts.")

	return cmd
}
