package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions/doctor"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newDoctorCmd() *cobra.Command {
	var opts doctor.Options

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment and the tracked stacks for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.RunUninitialized(cmd, func(ctx *runtime.Context) error {
				return doctor.Action(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "Untrack branches that were deleted outside st.")

	return cmd
}
