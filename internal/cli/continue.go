package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newContinueCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue a restack after resolving a conflict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ContinueAction(ctx, actions.ContinueOptions{AddAll: all})
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stage all changes before continuing.")

	return cmd
}
