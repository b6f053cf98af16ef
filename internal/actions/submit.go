package actions

import (
	"errors"
	"fmt"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/remote"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
)

// SubmitOptions contains options for the submit command
type SubmitOptions struct {
	BranchName string
	// Stack submits the whole stack of the branch bottom-up
	Stack bool
	Draft bool
}

// SubmitAction pushes branches and opens or updates their pull requests.
// Remote failures are reported per branch and never undo local state.
func SubmitAction(ctx *runtime.Context, opts SubmitOptions) error {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}

	var results []*remote.Result
	err = withLock(ctx, func() error {
		branches, err := submittable(ctx, branch, opts.Stack)
		if err != nil {
			return err
		}

		coord, err := ctx.Coordinator()
		if err != nil {
			return err
		}
		submitOpts := remote.SubmitOptions{Draft: opts.Draft || ctx.Config.SubmitDraft()}

		title := fmt.Sprintf("Submitting %d branches...", len(branches))
		if len(branches) == 1 {
			title = fmt.Sprintf("Submitting %s...", branch)
		}
		return tui.RunWithSpinner(ctx.Splog, title, func() error {
			if opts.Stack {
				var err error
				results, err = coord.SubmitStack(ctx.Context, branches, submitOpts)
				return err
			}
			result, err := coord.Submit(ctx.Context, branch, submitOpts)
			if result != nil {
				if result.Err == nil {
					result.Err = err
				}
				results = append(results, result)
			}
			return err
		})
	})
	return reportRemote(ctx, results, err)
}

// submittable returns the branches to submit for branch. Tips are refreshed
// from git first so a parent that gained commits makes its children stale.
func submittable(ctx *runtime.Context, branch string, stack bool) ([]string, error) {
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return nil, err
	}
	if !forest.IsTracked(branch) {
		return nil, sterrors.NewNotTrackedError(branch)
	}
	if forest.IsTrunk(branch) {
		return nil, fmt.Errorf("cannot submit trunk %s: %w", branch, sterrors.ErrTrunkOperation)
	}

	if err := ctx.Engine.RefreshTips(ctx.Context, branch); err != nil {
		return nil, err
	}
	if forest, err = ctx.Engine.Forest(); err != nil {
		return nil, err
	}

	branches := []string{branch}
	if stack {
		branches = forest.StackOf(branch)
	}
	for _, b := range branches {
		if !forest.IsClean(b) {
			return nil, fmt.Errorf("%s is not restacked on %s, run `st restack` before submitting", b, forest.ParentOf(b))
		}
	}
	return branches, nil
}

// reportRemote prints per-branch results. Remote failures are warnings: the
// local graph is already correct and a rerun retries them.
func reportRemote(ctx *runtime.Context, results []*remote.Result, err error) error {
	items := make([]tui.SubmitItem, 0, len(results))
	for _, r := range results {
		items = append(items, tui.SubmitItem{
			Branch:  r.Branch,
			Number:  r.Number,
			URL:     r.URL,
			Created: r.Created,
			Changed: r.Changed,
			Err:     r.Err,
		})
	}
	tui.PrintSubmitResults(ctx.Splog, items)

	if err != nil && !errors.Is(err, sterrors.ErrSync) {
		return err
	}
	if len(items) == 0 {
		if err != nil {
			ctx.Splog.Warn("%v", err)
		} else {
			ctx.Splog.Info("No pull requests to update.")
		}
	}
	return nil
}
