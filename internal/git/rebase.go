package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)

func (r RebaseResult) String() string {
	if r == RebaseDone {
		return "done"
	}
	return "conflict"
}

// Rebase replays the commits of branch after upstream onto onto.
// The rebase runs on a detached HEAD and the branch ref is moved afterwards,
// so a branch checked out in another worktree can still be restacked.
// On conflict the rebase is left in progress for the user to resolve.
func (r *Repo) Rebase(ctx context.Context, branch, onto, upstream string) (RebaseResult, error) {
	currentBranch, err := r.CurrentBranch(ctx)
	var currentRev string
	if err != nil {
		currentBranch = ""
		currentRev, _ = r.runner.Run(ctx, "rev-parse", "HEAD")
	}

	branchRev, err := r.runner.Run(ctx, "rev-parse", "refs/heads/"+branch)
	if err != nil {
		return RebaseConflict, fmt.Errorf("failed to get revision for %s: %w", branch, err)
	}

	// git rebase --onto <onto> <upstream> <branchRev>
	if _, err := r.runner.Run(ctx, "rebase", "--onto", onto, upstream, branchRev); err != nil {
		if r.IsRebaseInProgress(ctx) {
			return RebaseConflict, nil
		}
		_, _ = r.runner.Run(ctx, "rebase", "--abort")
		r.restoreCheckout(ctx, currentBranch, currentRev)
		return RebaseConflict, fmt.Errorf("failed to rebase %s onto %s: %w", branch, onto, err)
	}

	if err := r.updateBranchToHead(ctx, branch); err != nil {
		return RebaseConflict, err
	}

	r.restoreCheckout(ctx, currentBranch, currentRev)
	return RebaseDone, nil
}

// ContinueRebase continues the in-progress rebase of branch. When it finishes
// cleanly the branch ref is moved to the rebased commit.
func (r *Repo) ContinueRebase(ctx context.Context, branch string) (RebaseResult, error) {
	if r.IsRebaseInProgress(ctx) {
		_, err := r.runner.Run(ctx, "-c", "core.editor=true", "rebase", "--continue")
		if err != nil {
			if r.IsRebaseInProgress(ctx) {
				return RebaseConflict, nil
			}
			return RebaseConflict, fmt.Errorf("rebase continue failed: %w", err)
		}
	}

	// Either we just finished it, or the user ran `git rebase --continue`
	// themselves and HEAD already sits on the rebased commit.
	if err := r.updateBranchToHead(ctx, branch); err != nil {
		return RebaseConflict, err
	}
	return RebaseDone, nil
}

// AbortRebase aborts an in-progress rebase. It is a no-op when none is running.
func (r *Repo) AbortRebase(ctx context.Context) error {
	if !r.IsRebaseInProgress(ctx) {
		return nil
	}
	if _, err := r.runner.Run(ctx, "rebase", "--abort"); err != nil {
		return fmt.Errorf("rebase abort failed: %w", err)
	}
	return nil
}

// IsRebaseInProgress checks for the rebase-merge and rebase-apply state directories
func (r *Repo) IsRebaseInProgress(_ context.Context) bool {
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(r.gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

// IsConflictResolved reports whether the index has no unmerged paths left
func (r *Repo) IsConflictResolved(ctx context.Context) (bool, error) {
	files, err := r.UnmergedFiles(ctx)
	if err != nil {
		return false, err
	}
	return len(files) == 0, nil
}

// UnmergedFiles lists paths with unresolved conflicts
func (r *Repo) UnmergedFiles(ctx context.Context) ([]string, error) {
	files, err := r.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	return files, nil
}

func (r *Repo) updateBranchToHead(ctx context.Context, branch string) error {
	newRev, err := r.runner.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return fmt.Errorf("failed to get new revision after rebase: %w", err)
	}
	if _, err := r.runner.Run(ctx, "update-ref", "refs/heads/"+branch, newRev); err != nil {
		return fmt.Errorf("failed to update branch reference %s: %w", branch, err)
	}
	return nil
}

func (r *Repo) restoreCheckout(ctx context.Context, branch, rev string) {
	switch {
	case branch != "":
		if err := r.Checkout(ctx, branch); err != nil {
			// The branch may be checked out in another worktree
			_, _ = r.runner.Run(ctx, "checkout", "--detach", branch)
		}
	case rev != "":
		_, _ = r.runner.Run(ctx, "checkout", "--detach", rev)
	}
}
