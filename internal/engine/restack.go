package engine

import (
	"context"
	"fmt"
	"log/slog"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
)

// ComputePlan walks the subtree at root in pre-order and returns a step for
// every stale non-trunk branch, targeting its parent's recorded tip. Clean
// branches are skipped but their children are still visited.
func ComputePlan(forest *Forest, root string, order ChildOrder) ([]Step, error) {
	if !forest.IsTracked(root) {
		return nil, sterrors.NewNotTrackedError(root)
	}

	var steps []Step
	forest.Walk(root, order, func(name string, _ int) {
		if forest.IsTrunk(name) || forest.IsClean(name) {
			return
		}
		b := forest.Get(name)
		steps = append(steps, Step{
			Branch: name,
			Parent: b.Parent,
			Onto:   forest.Get(b.Parent).Tip,
		})
	})
	return steps, nil
}

// Restacker executes plans against the VCS, checkpointing after every step
type Restacker struct {
	store *Store
	plans *PlanStore
	vcs   VCS
	log   *slog.Logger
}

// NewRestacker creates a Restacker
func NewRestacker(store *Store, plans *PlanStore, vcs VCS, log *slog.Logger) *Restacker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Restacker{store: store, plans: plans, vcs: vcs, log: log}
}

// RefreshTips records the current VCS tip of root's subtree and its ancestors
// in the store. Branches whose tip moved outside st invalidate their children
// through the base snapshot comparison.
func (r *Restacker) RefreshTips(ctx context.Context, root string, order ChildOrder) error {
	forest, err := r.store.Snapshot()
	if err != nil {
		return err
	}

	if !forest.IsTracked(root) {
		return sterrors.NewNotTrackedError(root)
	}
	names := append(forest.AncestorsOf(root), root)
	names = append(names, forest.Descendants(root, order)...)

	tips := make(map[string]string, len(names))
	for _, name := range names {
		b := forest.Get(name)
		if b == nil {
			continue
		}
		tip, err := r.vcs.CurrentTip(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to read tip of %s: %w", name, err)
		}
		if b.Tip != tip {
			tips[name] = tip
		}
	}
	if len(tips) == 0 {
		return nil
	}

	return r.store.Update(func(f *Forest) error {
		for name, tip := range tips {
			r.log.Debug("tip moved", "branch", name, "tip", tip)
			if err := f.SetTip(name, tip); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExecutePlan runs the steps of plan starting at its cursor. On conflict the
// plan is persisted with the cursor on the failing step and a ConflictError
// is returned.
func (r *Restacker) ExecutePlan(ctx context.Context, plan *Plan) error {
	for !plan.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		step := plan.Current()
		if err := r.prepareStep(ctx, plan, step); err != nil {
			return err
		}
		if err := r.plans.Save(plan); err != nil {
			return err
		}

		if step.OldBase == step.Onto {
			r.log.Debug("already on parent tip", "branch", step.Branch, "onto", step.Onto)
		} else {
			r.log.Debug("rebasing", "branch", step.Branch, "onto", step.Onto, "upstream", step.OldBase)
			result, err := r.vcs.Rebase(ctx, step.Branch, step.Onto, step.OldBase)
			if err != nil {
				return fmt.Errorf("failed to restack %s onto %s: %w", step.Branch, step.Parent, err)
			}
			if result == git.RebaseConflict {
				return sterrors.NewConflictError(step.Branch, step.Parent, plan.ID, plan.Cursor, len(plan.Steps))
			}
		}

		if err := r.CompleteStep(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}

// CompleteStep records the step at the cursor as done: the branch is clean on
// the step's onto commit, its new tip is recorded, its direct children are
// invalidated and the cursor advances.
func (r *Restacker) CompleteStep(ctx context.Context, plan *Plan) error {
	step := plan.Current()
	if step == nil {
		return nil
	}

	tip, err := r.vcs.CurrentTip(ctx, step.Branch)
	if err != nil {
		return fmt.Errorf("failed to read tip of %s: %w", step.Branch, err)
	}

	err = r.store.Update(func(f *Forest) error {
		if err := f.SetTip(step.Branch, tip); err != nil {
			return err
		}
		if err := f.MarkClean(step.Branch, step.Onto); err != nil {
			return err
		}
		for _, child := range f.ChildrenOf(step.Branch) {
			if err := f.MarkStale(child); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug("restacked", "branch", step.Branch, "onto", step.Onto, "tip", tip)
	plan.Cursor++
	return r.plans.Save(plan)
}

// prepareStep refreshes Onto when an earlier step of this plan rewrote the
// parent and picks the upstream to replay from.
func (r *Restacker) prepareStep(ctx context.Context, plan *Plan, step *Step) error {
	forest, err := r.store.Snapshot()
	if err != nil {
		return err
	}
	for _, done := range plan.Steps[:plan.Cursor] {
		if done.Branch == step.Parent {
			step.Onto = forest.Get(step.Parent).Tip
		}
	}

	if _, ok := plan.OrigTips[step.Branch]; !ok {
		tip, err := r.vcs.CurrentTip(ctx, step.Branch)
		if err != nil {
			return fmt.Errorf("failed to read tip of %s: %w", step.Branch, err)
		}
		plan.OrigTips[step.Branch] = tip
	}

	oldBase, err := r.oldBase(ctx, forest, step)
	if err != nil {
		return err
	}
	step.OldBase = oldBase
	return nil
}

// oldBase is the recorded base snapshot when it is still part of the branch's
// history, otherwise the merge base with the parent, so only the branch's own
// commits are replayed.
func (r *Restacker) oldBase(ctx context.Context, forest *Forest, step *Step) (string, error) {
	if base := forest.Get(step.Branch).BaseSnapshot; base != "" {
		ok, err := r.vcs.IsAncestor(ctx, base, step.Branch)
		if err == nil && ok {
			return base, nil
		}
	}
	base, err := r.vcs.MergeBase(ctx, step.Branch, step.Parent)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base of %s and %s: %w", step.Branch, step.Parent, err)
	}
	return base, nil
}
