package testhelpers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
)

type fakeCommit struct {
	sha     string
	parent  string
	subject string
}

type fakeRebase struct {
	branch   string
	newTip   string
	resolved bool
}

// RebaseCall records one Rebase invocation on a FakeVCS
type RebaseCall struct {
	Branch   string
	Onto     string
	Upstream string
}

// FakeVCS is an in-memory git with a linear commit graph per branch. Rebases
// copy commits like git does, so tips change exactly when history is rewritten.
// Conflicts and failures can be injected per branch.
type FakeVCS struct {
	mu       sync.Mutex
	commits  map[string]*fakeCommit
	branches map[string]string
	head     string
	seq      int

	conflicts map[string]int
	failures  map[string]error
	rebase    *fakeRebase

	RebaseCalls []RebaseCall
}

// NewFakeVCS returns a repository with one commit on trunk, checked out
func NewFakeVCS(trunk string) *FakeVCS {
	f := &FakeVCS{
		commits:   make(map[string]*fakeCommit),
		branches:  make(map[string]string),
		conflicts: make(map[string]int),
		failures:  make(map[string]error),
		head:      trunk,
	}
	f.branches[trunk] = f.newCommit("", "initial")
	return f
}

func (f *FakeVCS) newCommit(parent, subject string) string {
	f.seq++
	sha := fmt.Sprintf("%040x", f.seq)
	f.commits[sha] = &fakeCommit{sha: sha, parent: parent, subject: subject}
	return sha
}

// Commit adds a commit on top of branch and returns its SHA
func (f *FakeVCS) Commit(branch, subject string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha := f.newCommit(f.branches[branch], subject)
	f.branches[branch] = sha
	return sha
}

// Amend replaces the tip commit of branch with a new one
func (f *FakeVCS) Amend(branch, subject string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tip := f.commits[f.branches[branch]]
	sha := f.newCommit(tip.parent, subject)
	f.branches[branch] = sha
	return sha
}

// Branch creates name at from and adds the given commits on it
func (f *FakeVCS) Branch(name, from string, subjects ...string) string {
	f.mu.Lock()
	f.branches[name] = f.resolveLocked(from)
	f.mu.Unlock()
	for _, s := range subjects {
		f.Commit(name, s)
	}
	return f.Tip(name)
}

// Tip returns the commit branch points at
func (f *FakeVCS) Tip(branch string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.branches[branch]
}

// Subjects returns the commit subjects reachable from branch, newest first
func (f *FakeVCS) Subjects(branch string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for sha := f.branches[branch]; sha != ""; sha = f.commits[sha].parent {
		out = append(out, f.commits[sha].subject)
	}
	return out
}

// FailNextRebase makes the next n rebases of branch stop on a conflict
func (f *FakeVCS) FailNextRebase(branch string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts[branch] = n
}

// BreakRebase makes every rebase of branch fail with err
func (f *FakeVCS) BreakRebase(branch string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[branch] = err
}

// ResolveConflict marks the in-progress conflict as resolved
func (f *FakeVCS) ResolveConflict() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rebase != nil {
		f.rebase.resolved = true
	}
}

// RebaseInProgress reports whether a rebase is stopped on a conflict
func (f *FakeVCS) RebaseInProgress() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebase != nil
}

// RebasedBranches returns the branch of every Rebase call, in order
func (f *FakeVCS) RebasedBranches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.RebaseCalls))
	for _, c := range f.RebaseCalls {
		out = append(out, c.Branch)
	}
	return out
}

// CurrentTip implements engine.VCS
func (f *FakeVCS) CurrentTip(_ context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha := f.resolveLocked(ref)
	if sha == "" {
		return "", sterrors.NewBranchNotFoundError(ref)
	}
	return sha, nil
}

// Rebase implements engine.VCS
func (f *FakeVCS) Rebase(_ context.Context, branch, onto, upstream string) (git.RebaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RebaseCalls = append(f.RebaseCalls, RebaseCall{Branch: branch, Onto: onto, Upstream: upstream})
	if f.rebase != nil {
		return git.RebaseConflict, errors.New("a rebase is already in progress")
	}
	if err := f.failures[branch]; err != nil {
		return git.RebaseConflict, err
	}

	newTip := f.replayLocked(f.branches[branch], f.resolveLocked(upstream), f.resolveLocked(onto))
	if f.conflicts[branch] > 0 {
		f.conflicts[branch]--
		f.rebase = &fakeRebase{branch: branch, newTip: newTip}
		return git.RebaseConflict, nil
	}
	f.branches[branch] = newTip
	return git.RebaseDone, nil
}

// ContinueRebase implements engine.VCS
func (f *FakeVCS) ContinueRebase(_ context.Context, branch string) (git.RebaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rebase == nil {
		return git.RebaseConflict, sterrors.ErrRebaseNotInProgress
	}
	if !f.rebase.resolved {
		return git.RebaseConflict, nil
	}
	if f.rebase.branch != branch {
		return git.RebaseConflict, fmt.Errorf("rebase in progress is for %s, not %s", f.rebase.branch, branch)
	}
	f.branches[branch] = f.rebase.newTip
	f.rebase = nil
	return git.RebaseDone, nil
}

// AbortRebase implements engine.VCS
func (f *FakeVCS) AbortRebase(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebase = nil
	return nil
}

// IsConflictResolved implements engine.VCS
func (f *FakeVCS) IsConflictResolved(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebase == nil || f.rebase.resolved, nil
}

// CreateBranch implements engine.VCS
func (f *FakeVCS) CreateBranch(_ context.Context, name, from string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.branches[name]; ok {
		return fmt.Errorf("branch %s already exists", name)
	}
	sha := f.resolveLocked(from)
	if sha == "" {
		return sterrors.NewBranchNotFoundError(from)
	}
	f.branches[name] = sha
	return nil
}

// DeleteBranch implements engine.VCS
func (f *FakeVCS) DeleteBranch(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.branches[name]; !ok {
		return sterrors.NewBranchNotFoundError(name)
	}
	if f.head == name {
		return fmt.Errorf("cannot delete checked out branch %s", name)
	}
	delete(f.branches, name)
	return nil
}

// BranchExists implements engine.VCS
func (f *FakeVCS) BranchExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.branches[name]
	return ok, nil
}

// ResetBranch implements engine.VCS
func (f *FakeVCS) ResetBranch(_ context.Context, name, commit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.commits[commit]; !ok {
		return fmt.Errorf("unknown commit %s", commit)
	}
	f.branches[name] = commit
	return nil
}

// CurrentBranch implements engine.VCS
func (f *FakeVCS) CurrentBranch(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.head == "" {
		return "", sterrors.ErrNotOnBranch
	}
	return f.head, nil
}

// Checkout implements engine.VCS
func (f *FakeVCS) Checkout(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.branches[name]; !ok {
		return sterrors.NewBranchNotFoundError(name)
	}
	f.head = name
	return nil
}

// MergeBase implements engine.VCS
func (f *FakeVCS) MergeBase(_ context.Context, a, b string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ancestors := make(map[string]bool)
	for sha := f.resolveLocked(a); sha != ""; sha = f.commits[sha].parent {
		ancestors[sha] = true
	}
	for sha := f.resolveLocked(b); sha != ""; sha = f.commits[sha].parent {
		if ancestors[sha] {
			return sha, nil
		}
	}
	return "", fmt.Errorf("no merge base between %s and %s", a, b)
}

// IsAncestor implements engine.VCS
func (f *FakeVCS) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isAncestorLocked(f.resolveLocked(ancestor), f.resolveLocked(descendant)), nil
}

// CommitsBetween implements engine.VCS
func (f *FakeVCS) CommitsBetween(_ context.Context, base, head string) ([]git.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	baseSHA := f.resolveLocked(base)
	var out []git.Commit
	for sha := f.resolveLocked(head); sha != "" && !f.isAncestorLocked(sha, baseSHA); sha = f.commits[sha].parent {
		out = append(out, git.Commit{SHA: sha, Subject: f.commits[sha].subject})
	}
	slices.Reverse(out)
	return out, nil
}

func (f *FakeVCS) resolveLocked(ref string) string {
	if sha, ok := f.branches[ref]; ok {
		return sha
	}
	if _, ok := f.commits[ref]; ok {
		return ref
	}
	return ""
}

func (f *FakeVCS) isAncestorLocked(ancestor, descendant string) bool {
	if ancestor == "" {
		return false
	}
	for sha := descendant; sha != ""; sha = f.commits[sha].parent {
		if sha == ancestor {
			return true
		}
	}
	return false
}

// replayLocked copies the commits of tip that are not reachable from
// upstream onto onto, oldest first, and returns the new tip.
func (f *FakeVCS) replayLocked(tip, upstream, onto string) string {
	var replay []*fakeCommit
	for sha := tip; sha != "" && !f.isAncestorLocked(sha, upstream); sha = f.commits[sha].parent {
		replay = append(replay, f.commits[sha])
	}
	newTip := onto
	for i := len(replay) - 1; i >= 0; i-- {
		newTip = f.newCommit(newTip, replay[i].subject)
	}
	return newTip
}
