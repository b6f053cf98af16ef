package actions

import (
	"fmt"
	"slices"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// MoveOptions contains options for the move command
type MoveOptions struct {
	Source string // Branch to move (defaults to current branch)
	Onto   string // Branch to move onto
}

// MoveAction reparents a branch and restacks it with everything above it
func MoveAction(ctx *runtime.Context, opts MoveOptions) error {
	source, err := resolveBranch(ctx, opts.Source)
	if err != nil {
		return err
	}

	onto := opts.Onto
	if onto == "" {
		forest, err := ctx.Engine.Forest()
		if err != nil {
			return err
		}
		// The branch and its descendants would form a cycle
		excluded := append(forest.Descendants(source, ctx.Engine.ChildOrder()), source)
		var choices []tui.BranchChoice
		for _, c := range tui.BranchChoices(forest, source, ctx.Engine.ChildOrder()) {
			if !slices.Contains(excluded, c.Value) {
				choices = append(choices, c)
			}
		}
		onto, err = tui.PromptBranchSelection(fmt.Sprintf("Move %s onto", source), choices, forest.ParentOf(source))
		if err != nil {
			return fmt.Errorf("no target given for %s, pass one with --onto: %w", source, err)
		}
	}

	return withLock(ctx, func() error {
		report, err := ctx.Engine.MoveBranch(ctx.Context, source, onto)
		if err == nil {
			ctx.Splog.Info("Moved %s onto %s.", style.ColorBranchName(source, false), style.ColorBranchName(onto, false))
		}
		return reportRestack(ctx, report, err)
	})
}
