package actions

import (
	"fmt"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// PROptions specifies options for the pr command
type PROptions struct {
	BranchName string
	// Print only prints the URL
	Print bool
}

// openURL is swapped out in tests
var openURL = func(url string) error {
	return browserCommand(url).Run()
}

// PRAction opens the pull request linked to a branch in the browser
func PRAction(ctx *runtime.Context, opts PROptions) error {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	b := forest.Get(branch)
	if b == nil {
		return sterrors.NewNotTrackedError(branch)
	}
	if b.Remote == nil || b.Remote.URL == "" {
		return fmt.Errorf("%s has no pull request yet, run `st submit` first", branch)
	}

	url := b.Remote.URL
	if opts.Print {
		ctx.Splog.Page(url)
		ctx.Splog.Newline()
		return nil
	}
	ctx.Splog.Info("Opening %s for %s.", style.ColorPRNumber(b.Remote.PRNumber), style.ColorBranchName(branch, false))
	if err := openURL(url); err != nil {
		ctx.Splog.Warn("Could not open a browser: %v", err)
		ctx.Splog.Info("%s", url)
	}
	return nil
}
