package git

import (
	"context"
	"fmt"
)

// MergeBase returns the best common ancestor of two refs
func (r *Repo) MergeBase(_ context.Context, a, b string) (string, error) {
	hashA, err := r.resolve(a)
	if err != nil {
		return "", err
	}
	hashB, err := r.resolve(b)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	commitA, err := r.repo.CommitObject(hashA)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", a, err)
	}
	commitB, err := r.repo.CommitObject(hashB)
	if err != nil {
		return "", fmt.Errorf("failed to get commit %s: %w", b, err)
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("no merge base found between %s and %s", a, b)
	}
	return bases[0].Hash.String(), nil
}

// IsAncestor checks if ancestor is reachable from descendant
func (r *Repo) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	ancestorHash, err := r.resolve(ancestor)
	if err != nil {
		return false, err
	}
	descendantHash, err := r.resolve(descendant)
	if err != nil {
		return false, err
	}
	if ancestorHash == descendantHash {
		return true, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ancestorCommit, err := r.repo.CommitObject(ancestorHash)
	if err != nil {
		return false, fmt.Errorf("failed to get ancestor commit: %w", err)
	}
	descendantCommit, err := r.repo.CommitObject(descendantHash)
	if err != nil {
		return false, fmt.Errorf("failed to get descendant commit: %w", err)
	}
	return ancestorCommit.IsAncestor(descendantCommit)
}
