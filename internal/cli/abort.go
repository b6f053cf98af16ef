package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newAbortCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort a restack and put every branch back where it was",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.AbortAction(ctx, actions.AbortOptions{Force: force})
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Abort without asking for confirmation.")

	return cmd
}
