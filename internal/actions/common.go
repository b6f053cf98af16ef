package actions

import (
	"errors"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// withLock runs fn while holding the repository lock
func withLock(ctx *runtime.Context, fn func() error) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			ctx.Splog.Debug("failed to release repository lock: %v", err)
		}
	}()
	if err := ctx.Engine.Reload(); err != nil {
		return err
	}
	return fn()
}

// resolveBranch returns name, or the checked out branch when name is empty
func resolveBranch(ctx *runtime.Context, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return ctx.Engine.CurrentBranch(ctx.Context)
}

// currentBranch returns the checked out branch, or "" on a detached HEAD
func currentBranch(ctx *runtime.Context) string {
	current, err := ctx.Engine.CurrentBranch(ctx.Context)
	if err != nil {
		return ""
	}
	return current
}

// reportRestack prints the outcome of a restack. A conflict is not an error
// for the caller: the user gets instructions and the plan waits for them.
func reportRestack(ctx *runtime.Context, report *engine.RestackReport, err error) error {
	var conflict *sterrors.ConflictError
	if errors.As(err, &conflict) {
		return PrintConflictStatus(ctx, conflict)
	}
	if err != nil {
		return err
	}

	if report == nil || len(report.Restacked) == 0 {
		ctx.Splog.Info("All branches are up to date.")
		return nil
	}
	current := currentBranch(ctx)
	for _, step := range report.Restacked {
		ctx.Splog.Info("Restacked %s on %s.",
			style.ColorBranchName(step.Branch, step.Branch == current),
			style.ColorBranchName(step.Parent, step.Parent == current))
	}
	return nil
}
