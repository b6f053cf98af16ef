package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stacked.dev/st/internal/actions"
	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/runtime"
)

func newUpCmd() *cobra.Command {
	return newTraverseCmd(actions.DirectionUp, "up", "Switch to the child of the current branch",
		`Switch to the child of the current branch.

Moves one level away from trunk, or as many as given. If a branch has several
children you are asked which one to follow.`)
}

func newDownCmd() *cobra.Command {
	return newTraverseCmd(actions.DirectionDown, "down", "Switch to the parent of the current branch",
		`Switch to the parent of the current branch.

Moves one level towards trunk, or as many as given, stopping at the trunk.`)
}

func newTraverseCmd(direction actions.Direction, use, short, long string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   use + " [steps]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps argument: %s (must be a number)", args[0])
				}
				steps = parsed
			}
			if steps < 1 {
				return fmt.Errorf("steps must be at least 1")
			}
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return actions.SwitchBranchAction(ctx, actions.TraverseOptions{Direction: direction, Steps: steps})
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "The number of levels to move.")

	return cmd
}
