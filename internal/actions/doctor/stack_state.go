package doctor

import (
	"slices"
	"strings"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// checkStackState checks the tracked branches against git
func checkStackState(ctx *runtime.Context, r *report, fix bool) {
	splog := ctx.Splog
	if !ctx.Engine.Initialized() {
		splog.Info("  · Skipped, nothing is tracked yet")
		return
	}

	forest, err := ctx.Engine.Forest()
	if err != nil {
		r.fail("failed to read %s: %v", engine.ForestFile, err)
		splog.Error("  failed to read %s: %v", engine.ForestFile, err)
		return
	}

	if err := forest.Validate(); err != nil {
		r.fail("branch graph is inconsistent: %v", err)
		splog.Error("  branch graph is inconsistent: %v", err)
	} else {
		splog.Info("  ✅ Branch graph is consistent")
	}

	if plan, err := ctx.Engine.Status(); err != nil {
		r.fail("failed to read the restack plan: %v", err)
	} else if plan != nil {
		r.warn("restack %s is waiting on a conflict; run 'st continue' or 'st abort'", plan.ID)
		splog.Warn("  Restack %s is in progress", plan.ID)
		// Pruning would race the outstanding plan
		fix = false
	} else {
		splog.Info("  ✅ No restack in progress")
	}

	missing := missingBranches(ctx, forest)
	switch {
	case len(missing) == 0:
		splog.Info("  ✅ Every tracked branch exists in git")
	case fix:
		pruned, err := prune(ctx)
		if err != nil {
			r.fail("failed to untrack deleted branches: %v", err)
			splog.Error("  failed to untrack deleted branches: %v", err)
			break
		}
		for _, name := range pruned {
			splog.Info("  ✅ Untracked deleted branch %s", style.ColorBranchName(name, false))
		}
	default:
		for _, name := range missing {
			r.warn("tracked branch '%s' no longer exists in git", name)
		}
		splog.Warn("  Found %d tracked branch(es) deleted outside st (run 'st doctor --fix' to untrack them)", len(missing))
	}

	var stale []string
	for name := range forest.Branches {
		if !forest.IsTrunk(name) && !slices.Contains(missing, name) && !forest.IsClean(name) {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		slices.Sort(stale)
		splog.Info("  · %d branch(es) need a restack: %s", len(stale), style.ColorDim(strings.Join(stale, ", ")))
	} else {
		splog.Info("  ✅ Every branch sits on its parent")
	}
}

func missingBranches(ctx *runtime.Context, forest *engine.Forest) []string {
	var missing []string
	for name := range forest.Branches {
		if forest.IsTrunk(name) {
			continue
		}
		exists, err := ctx.Repo.BranchExists(ctx.Context, name)
		if err == nil && !exists {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// prune untracks deleted branches while holding the repository lock
func prune(ctx *runtime.Context) ([]string, error) {
	lock, err := ctx.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()
	if err := ctx.Engine.Reload(); err != nil {
		return nil, err
	}
	return ctx.Engine.Prune(ctx.Context)
}
