package actions

import (
	"fmt"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// TrackOptions contains options for the track command
type TrackOptions struct {
	Branch string
	Parent string
}

// TrackAction starts tracking an existing git branch under a parent
func TrackAction(ctx *runtime.Context, opts TrackOptions) error {
	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}

	parent := opts.Parent
	if parent == "" {
		forest, err := ctx.Engine.Forest()
		if err != nil {
			return err
		}
		choices := tui.BranchChoices(forest, branch, ctx.Engine.ChildOrder())
		parent, err = tui.PromptBranchSelection(fmt.Sprintf("Select a parent for %s", branch), choices, forest.TrunkOf(branch))
		if err != nil {
			return fmt.Errorf("no parent given for %s, pass one with --parent: %w", branch, err)
		}
	}

	return withLock(ctx, func() error {
		if err := ctx.Engine.TrackBranch(ctx.Context, branch, parent); err != nil {
			return err
		}
		forest, err := ctx.Engine.Forest()
		if err != nil {
			return err
		}
		ctx.Splog.Info("Tracked %s with parent %s.", style.ColorBranchName(branch, false), style.ColorBranchName(parent, false))
		if !forest.IsClean(branch) {
			ctx.Splog.Tip("%s is not based on %s yet; run %s.", branch, parent, style.ColorCyan("st restack"))
		}
		return nil
	})
}

// UntrackOptions contains options for the untrack command
type UntrackOptions struct {
	Branch string
}

// UntrackAction stops tracking a branch without touching git
func UntrackAction(ctx *runtime.Context, opts UntrackOptions) error {
	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}
	return withLock(ctx, func() error {
		if err := ctx.Engine.UntrackBranch(branch); err != nil {
			return err
		}
		ctx.Splog.Info("Stopped tracking %s.", style.ColorBranchName(branch, false))
		return nil
	})
}
