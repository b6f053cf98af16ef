package actions

import (
	"stacked.dev/st/internal/runtime"
)

// RestackOptions contains options for the restack command
type RestackOptions struct {
	BranchName string
}

// RestackAction rebases a branch and everything above it onto their parents.
// On a trunk this restacks every stack built on it.
func RestackAction(ctx *runtime.Context, opts RestackOptions) error {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}
	return withLock(ctx, func() error {
		report, err := ctx.Engine.Restack(ctx.Context, branch)
		return reportRestack(ctx, report, err)
	})
}
