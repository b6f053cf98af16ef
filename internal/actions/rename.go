package actions

import (
	"fmt"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
	"stacked.dev/st/internal/utils"
)

// RenameOptions contains options for the rename command
type RenameOptions struct {
	BranchName string
	NewName    string
	// Force renames a branch that already has a pull request
	Force bool
}

// RenameAction renames a tracked branch, keeping its place in the stack
func RenameAction(ctx *runtime.Context, opts RenameOptions) error {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}

	newName := opts.NewName
	if newName == "" {
		if newName, err = tui.PromptInput("New branch name", branch); err != nil {
			return fmt.Errorf("no new name given: %w", err)
		}
	}
	newName = utils.SanitizeBranchName(newName)
	if newName == "" {
		return fmt.Errorf("invalid branch name")
	}
	if newName == branch {
		ctx.Splog.Info("Branch is already named %s.", newName)
		return nil
	}

	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	if b := forest.Get(branch); b != nil && b.Remote != nil && !opts.Force {
		return fmt.Errorf("%s is linked to pull request #%d and GitHub cannot rename its head branch; use --force to drop the link", branch, b.Remote.PRNumber)
	}

	return withLock(ctx, func() error {
		if err := ctx.Engine.RenameBranch(ctx.Context, branch, newName); err != nil {
			return err
		}
		ctx.Splog.Info("Renamed %s to %s.", style.ColorBranchName(branch, false), style.ColorBranchName(newName, true))
		if b := forest.Get(branch); b != nil && b.Remote != nil {
			ctx.Splog.Tip("Run %s to open a new pull request for %s.", style.ColorCyan("st submit"), newName)
		}
		return nil
	})
}
