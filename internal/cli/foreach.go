package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newForeachCmd() *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "foreach -- <command>",
		Short: "Run a shell command on every branch of the current stack",
		Long: `Run a shell command on every branch of the current stack.

Each branch is checked out in turn from the bottom of the stack up, and the
original branch is checked out again at the end.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ForeachAction(ctx, actions.ForeachOptions{Command: args, FailFast: failFast})
			})
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first branch where the command fails.")

	return cmd
}
