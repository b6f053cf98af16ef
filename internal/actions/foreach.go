package actions

import (
	"fmt"
	"os/exec"
	"strings"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// ForeachOptions contains options for the foreach command
type ForeachOptions struct {
	// Command is run through /bin/sh
	Command  []string
	FailFast bool
}

// ForeachAction checks out each branch of the current stack in turn, from
// the bottom up, and runs a shell command on it. The original branch is
// checked out again afterwards.
func ForeachAction(ctx *runtime.Context, opts ForeachOptions) error {
	if len(opts.Command) == 0 {
		return fmt.Errorf("no command given")
	}
	if plan, err := ctx.Engine.Status(); err != nil {
		return err
	} else if plan != nil {
		branch := ""
		if step := plan.Current(); step != nil {
			branch = step.Branch
		}
		return sterrors.NewPlanInProgressError(plan.ID, branch)
	}

	original, err := ctx.Engine.CurrentBranch(ctx.Context)
	if err != nil {
		return err
	}
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	if !forest.IsTracked(original) {
		return sterrors.NewNotTrackedError(original)
	}
	branches := forest.StackOf(original)
	if len(branches) == 0 {
		ctx.Splog.Info("No branches in this stack.")
		return nil
	}

	defer func() {
		if err := ctx.Engine.Checkout(ctx.Context, original); err != nil {
			ctx.Splog.Error("Failed to return to %s: %v", original, err)
		}
	}()

	command := strings.Join(opts.Command, " ")
	var failed []string
	for _, branch := range branches {
		ctx.Splog.Info("Running on %s...", style.ColorBranchName(branch, branch == original))
		if err := ctx.Engine.Checkout(ctx.Context, branch); err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx.Context, "/bin/sh", "-c", command)
		cmd.Dir = ctx.Repo.Root()
		output, err := cmd.CombinedOutput()
		ctx.Splog.Page(string(output))
		if err != nil {
			ctx.Splog.Error("Command failed on %s: %v", branch, err)
			failed = append(failed, branch)
			if opts.FailFast {
				break
			}
			continue
		}
		ctx.Splog.Info("%s %s", style.ColorGreen("✓"), branch)
	}

	if len(failed) > 0 {
		return fmt.Errorf("command failed on %s", strings.Join(failed, ", "))
	}
	return nil
}
