package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newInitCmd() *cobra.Command {
	var trunk string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize st in the current repository",
		Long: `Initialize st in the current repository.

Records the trunk branch in .git/st. Without --trunk the configured trunk,
main, master, development, develop or the current branch is used, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.RunUninitialized(cmd, func(ctx *runtime.Context) error {
				if trunk == "" {
					inferred, err := actions.InferTrunk(ctx)
					if err != nil {
						return err
					}
					trunk = inferred
				}
				return actions.InitAction(ctx, actions.InitOptions{Trunk: trunk})
			})
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "The name of your trunk branch.")
	_ = cmd.RegisterFlagCompletionFunc("trunk", common.CompleteBranches)

	return cmd
}
