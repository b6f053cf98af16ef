package git

import (
	"context"
	"fmt"
)

// PullResult represents the result of a pull operation
type PullResult int

const (
	// PullDone indicates the branch moved forward
	PullDone PullResult = iota
	// PullUnneeded indicates the branch already matched the remote
	PullUnneeded
	// PullConflict indicates the branch has diverged from the remote
	PullConflict
)

func (r PullResult) String() string {
	switch r {
	case PullDone:
		return "updated"
	case PullUnneeded:
		return "up to date"
	case PullConflict:
		return "diverged"
	default:
		return "unknown"
	}
}

// PullBranch fast-forwards branch to its remote counterpart. A diverged
// branch is left untouched and reported as PullConflict.
func (r *Repo) PullBranch(ctx context.Context, remote, branch string) (PullResult, error) {
	if _, err := r.runner.Run(ctx, "fetch", remote, branch); err != nil {
		return PullConflict, fmt.Errorf("failed to fetch %s from %s: %w", branch, remote, err)
	}

	before, err := r.CurrentTip(ctx, branch)
	if err != nil {
		return PullConflict, err
	}
	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remote, branch)
	after, err := r.runner.Run(ctx, "rev-parse", remoteRef)
	if err != nil {
		return PullConflict, fmt.Errorf("failed to resolve %s: %w", remoteRef, err)
	}
	if before == after {
		return PullUnneeded, nil
	}
	if ok, err := r.IsAncestor(ctx, before, after); err != nil {
		return PullConflict, err
	} else if !ok {
		return PullConflict, nil
	}

	current, _ := r.CurrentBranch(ctx)
	if current == branch {
		_, err = r.runner.Run(ctx, "merge", "--ff-only", remoteRef)
	} else {
		_, err = r.runner.Run(ctx, "update-ref", "refs/heads/"+branch, after, before)
	}
	if err != nil {
		return PullConflict, fmt.Errorf("failed to fast-forward %s: %w", branch, err)
	}
	return PullDone, nil
}
