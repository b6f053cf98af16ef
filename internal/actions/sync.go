package actions

import (
	"errors"
	"fmt"
	"slices"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/remote"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// SyncOptions contains options for the sync command
type SyncOptions struct {
	// Force deletes merged branches without asking
	Force     bool
	NoPull    bool
	NoRestack bool
}

// SyncAction brings the local stacks and their pull requests up to date:
// trunks are fast-forwarded, branches whose PR merged are deleted, stacks
// are restacked and every linked PR gets its base and stack comment synced.
func SyncAction(ctx *runtime.Context, opts SyncOptions) error {
	return withLock(ctx, func() error {
		if !opts.NoPull {
			pullTrunks(ctx)
		}

		coord, err := ctx.Coordinator()
		if err != nil {
			return err
		}

		if err := cleanMergedBranches(ctx, coord, opts.Force); err != nil {
			return err
		}

		if !opts.NoRestack {
			restacked, err := restackTrunks(ctx)
			if err != nil || !restacked {
				// A conflict is waiting for the user; PRs follow once it is resolved
				return err
			}
		}

		var results []*remote.Result
		err = tui.RunWithSpinner(ctx.Splog, "Syncing pull requests...", func() error {
			var err error
			results, err = coord.SyncAll(ctx.Context, ctx.Engine.ChildOrder())
			return err
		})
		return reportRemote(ctx, results, err)
	})
}

func pullTrunks(ctx *runtime.Context) {
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return
	}
	remoteName := ctx.Config.RemoteName()
	for _, trunk := range forest.Trunks {
		result, err := ctx.Repo.PullBranch(ctx.Context, remoteName, trunk)
		if err != nil {
			ctx.Splog.Warn("Could not pull %s: %v", trunk, err)
			continue
		}
		if result == git.PullConflict {
			ctx.Splog.Warn("%s has diverged from %s/%s and was left as is.", trunk, remoteName, trunk)
			continue
		}
		ctx.Splog.Info("%s %s.", style.ColorBranchName(trunk, false), result)
	}
}

// cleanMergedBranches refreshes PR states and deletes branches whose PR was merged
func cleanMergedBranches(ctx *runtime.Context, coord *remote.Coordinator, force bool) error {
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	var names []string
	for name := range forest.Branches {
		if !forest.IsTrunk(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	merged, err := coord.RefreshStates(ctx.Context, names)
	if err != nil {
		if !errors.Is(err, sterrors.ErrSync) {
			return err
		}
		ctx.Splog.Warn("Could not refresh every PR state: %v", err)
	}

	// Branches merged earlier but kept because deletion was declined
	forest, err = ctx.Engine.Forest()
	if err != nil {
		return err
	}
	for _, name := range names {
		b, link := forest.Get(name), forest.Archive[name]
		if b != nil && b.Remote == nil && link != nil && link.State == engine.PRStateMerged && !slices.Contains(merged, name) {
			merged = append(merged, name)
		}
	}

	for _, name := range merged {
		if !force {
			confirmed, err := tui.PromptConfirm(fmt.Sprintf("%s has been merged. Delete it?", name), true)
			if errors.Is(err, tui.ErrInteractiveDisabled) {
				ctx.Splog.Tip("%s has been merged; rerun with --force to delete it.", name)
				continue
			}
			if err != nil {
				return err
			}
			if !confirmed {
				continue
			}
		}
		if err := ctx.Engine.DeleteBranch(ctx.Context, name); err != nil {
			return err
		}
		ctx.Splog.Info("Deleted merged branch %s.", style.ColorBranchName(name, false))
	}
	return nil
}

// restackTrunks restacks every stack. It returns false when a conflict stopped it.
func restackTrunks(ctx *runtime.Context) (bool, error) {
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return false, err
	}
	for _, trunk := range forest.Trunks {
		report, err := ctx.Engine.Restack(ctx.Context, trunk)
		var conflict *sterrors.ConflictError
		if errors.As(err, &conflict) {
			return false, PrintConflictStatus(ctx, conflict)
		}
		if err != nil {
			return false, err
		}
		if err := reportRestack(ctx, report, nil); err != nil {
			return false, err
		}
	}
	return true, nil
}
