package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newSyncCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull trunk, clean up merged branches and refresh pull requests",
		Long: `Pull trunk, clean up merged branches and refresh pull requests.

Branches whose pull requests were merged are deleted (after confirmation) and
their children move onto the trunk. Stale branches are then restacked and
every open pull request gets its base and stack comment brought up to date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SyncAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Delete merged branches without asking.")
	cmd.Flags().BoolVar(&opts.NoPull, "no-pull", false, "Do not pull trunk branches from the remote.")
	cmd.Flags().BoolVar(&opts.NoRestack, "no-restack", false, "Do not restack after cleaning up.")

	return cmd
}
