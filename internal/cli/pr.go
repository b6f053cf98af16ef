package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newPRCmd() *cobra.Command {
	var printURL bool

	cmd := &cobra.Command{
		Use:               "pr [branch]",
		Short:             "Open a branch's pull request in the browser",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.PROptions{Print: printURL}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return actions.PRAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&printURL, "print", false, "Print the URL instead of opening it.")

	return cmd
}
