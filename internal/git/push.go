package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Push pushes branch to remote and sets it as upstream.
// Restacked branches need forceWithLease since their history was rewritten.
func (r *Repo) Push(ctx context.Context, remote, branch string, forceWithLease bool) error {
	args := []string{"push", "-u", remote}
	if forceWithLease {
		args = append(args, "--force-with-lease")
	}
	args = append(args, branch)

	if _, err := r.runner.Run(ctx, args...); err != nil {
		if strings.Contains(err.Error(), "stale info") {
			return fmt.Errorf("force-with-lease push of %s was rejected because the remote branch changed: %w", branch, err)
		}
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}

// Pushed reports whether the remote-tracking ref of branch points at the
// local tip, i.e. a push would not change anything.
func (r *Repo) Pushed(_ context.Context, remote, branch string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	local, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return false, fmt.Errorf("failed to read branch %s: %w", branch, err)
	}
	tracking, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s/%s: %w", remote, branch, err)
	}
	return local.Hash() == tracking.Hash(), nil
}
