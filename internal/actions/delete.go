package actions

import (
	"errors"
	"fmt"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// DeleteOptions contains options for deleting branches
type DeleteOptions struct {
	BranchName string
	Force      bool
}

// DeleteAction deletes a branch. Its children move onto its parent and need
// a restack afterwards.
func DeleteAction(ctx *runtime.Context, opts DeleteOptions) error {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}

	if !opts.Force {
		confirmed, err := tui.PromptConfirm(fmt.Sprintf("Delete branch %s and its commits?", branch), false)
		if errors.Is(err, tui.ErrInteractiveDisabled) {
			return fmt.Errorf("refusing to delete %s without confirmation, use --force", branch)
		}
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Splog.Info("Delete canceled.")
			return nil
		}
	}

	children := forest.ChildrenOf(branch)
	parent := forest.ParentOf(branch)
	return withLock(ctx, func() error {
		if err := ctx.Engine.DeleteBranch(ctx.Context, branch); err != nil {
			return err
		}
		ctx.Splog.Info("Deleted %s.", style.ColorBranchName(branch, false))
		for _, child := range children {
			ctx.Splog.Info("Moved %s onto %s.", style.ColorBranchName(child, false), style.ColorBranchName(parent, false))
		}
		if len(children) > 0 {
			ctx.Splog.Tip("Run %s to rebase the moved branches.", style.ColorCyan("st restack"))
		}
		return nil
	})
}
