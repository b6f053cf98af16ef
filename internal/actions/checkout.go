package actions

import (
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// CheckoutOptions specifies options for the checkout command
type CheckoutOptions struct {
	BranchName string
	// Trunk checks out the trunk of the current stack
	Trunk bool
}

// CheckoutAction checks out a branch, asking with a picker when none is given
func CheckoutAction(ctx *runtime.Context, opts CheckoutOptions) error {
	current := currentBranch(ctx)
	branch := opts.BranchName

	if branch == "" {
		forest, err := ctx.Engine.Forest()
		if err != nil {
			return err
		}
		if opts.Trunk {
			branch = forest.TrunkOf(current)
			if branch == "" {
				branch = forest.Trunks[0]
			}
		} else {
			choices := tui.BranchChoices(forest, current, ctx.Engine.ChildOrder())
			if branch, err = tui.PromptBranchSelection("Checkout a branch", choices, current); err != nil {
				return err
			}
		}
	}

	if branch == current {
		ctx.Splog.Info("Already on %s.", style.ColorBranchName(branch, true))
		return nil
	}
	if err := ctx.Engine.Checkout(ctx.Context, branch); err != nil {
		return err
	}
	ctx.Splog.Info("Checked out %s.", style.ColorBranchName(branch, true))
	return nil
}
