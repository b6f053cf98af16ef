// Package errors provides sentinel errors and custom error types for st.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrBranchNotFound indicates that a branch does not exist in git
	ErrBranchNotFound = errors.New("branch not found")

	// ErrCycle indicates that a parent assignment would create a cycle
	ErrCycle = errors.New("cycle in branch graph")

	// ErrDuplicate indicates that a branch is already tracked
	ErrDuplicate = errors.New("branch already tracked")

	// ErrDanglingParent indicates that a parent is not tracked
	ErrDanglingParent = errors.New("parent not tracked")

	// ErrHasChildren indicates that a branch cannot be removed while it has children
	ErrHasChildren = errors.New("branch has children")

	// ErrNotTracked indicates that a branch is not tracked
	ErrNotTracked = errors.New("branch not tracked")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrRebaseNotInProgress indicates that no restack is waiting for resolution
	ErrRebaseNotInProgress = errors.New("no restack in progress")

	// ErrConflictUnresolved indicates that conflicts remain in the working tree
	ErrConflictUnresolved = errors.New("conflict not resolved")

	// ErrPlanInProgress indicates that a restack plan is already outstanding
	ErrPlanInProgress = errors.New("restack already in progress")

	// ErrRepositoryBusy indicates that another st process holds the repository lock
	ErrRepositoryBusy = errors.New("repository busy")

	// ErrSync indicates a non-fatal failure talking to the remote host
	ErrSync = errors.New("remote sync failed")

	// ErrTrunkOperation indicates an invalid operation on a trunk branch
	ErrTrunkOperation = errors.New("invalid operation on trunk branch")

	// ErrNoRemoteLink indicates that a branch has not been submitted yet
	ErrNoRemoteLink = errors.New("branch has no pull request")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// CycleError is returned when a parent assignment would make a branch its own ancestor
type CycleError struct {
	Branch string
	Parent string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot set parent of %s to %s: would create a cycle, %s is an ancestor of %s", e.Branch, e.Parent, e.Branch, e.Parent)
}

// Is returns true if the target error is ErrCycle
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// NewCycleError creates a new CycleError
func NewCycleError(branch, parent string) *CycleError {
	return &CycleError{Branch: branch, Parent: parent}
}

// DuplicateError is returned when tracking a branch twice
type DuplicateError struct {
	Branch string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("branch %s is already tracked", e.Branch)
}

// Is returns true if the target error is ErrDuplicate
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// NewDuplicateError creates a new DuplicateError
func NewDuplicateError(branch string) *DuplicateError {
	return &DuplicateError{Branch: branch}
}

// DanglingParentError is returned when a branch points at an untracked parent
type DanglingParentError struct {
	Branch string
	Parent string
}

func (e *DanglingParentError) Error() string {
	return fmt.Sprintf("parent %s of %s is not tracked", e.Parent, e.Branch)
}

// Is returns true if the target error is ErrDanglingParent
func (e *DanglingParentError) Is(target error) bool {
	return target == ErrDanglingParent
}

// NewDanglingParentError creates a new DanglingParentError
func NewDanglingParentError(branch, parent string) *DanglingParentError {
	return &DanglingParentError{Branch: branch, Parent: parent}
}

// HasChildrenError is returned when removing a branch that still has children
type HasChildrenError struct {
	Branch   string
	Children []string
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("branch %s has children: %s", e.Branch, strings.Join(e.Children, ", "))
}

// Is returns true if the target error is ErrHasChildren
func (e *HasChildrenError) Is(target error) bool {
	return target == ErrHasChildren
}

// NewHasChildrenError creates a new HasChildrenError
func NewHasChildrenError(branch string, children []string) *HasChildrenError {
	return &HasChildrenError{Branch: branch, Children: children}
}

// NotTrackedError is returned when an operation names an untracked branch
type NotTrackedError struct {
	Branch string
}

func (e *NotTrackedError) Error() string {
	return fmt.Sprintf("branch %s is not tracked by st", e.Branch)
}

// Is returns true if the target error is ErrNotTracked
func (e *NotTrackedError) Is(target error) bool {
	return target == ErrNotTracked
}

// NewNotTrackedError creates a new NotTrackedError
func NewNotTrackedError(branch string) *NotTrackedError {
	return &NotTrackedError{Branch: branch}
}

// ConflictError is returned when a restack stops on a conflicting rebase.
// The plan has been persisted; the user resolves and runs continue or abort.
type ConflictError struct {
	Branch string
	Onto   string
	PlanID string
	Step   int
	Total  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("rebase conflict restacking %s onto %s (step %d of %d)", e.Branch, e.Onto, e.Step+1, e.Total)
}

// Is returns true if the target error is ErrRebaseConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(branch, onto, planID string, step, total int) *ConflictError {
	return &ConflictError{Branch: branch, Onto: onto, PlanID: planID, Step: step, Total: total}
}

// PlanInProgressError is returned when a restack is requested while another is unresolved
type PlanInProgressError struct {
	PlanID string
	Branch string
}

func (e *PlanInProgressError) Error() string {
	if e.Branch != "" {
		return fmt.Sprintf("restack %s is waiting on a conflict in %s; run `st continue` or `st abort`", e.PlanID, e.Branch)
	}
	return fmt.Sprintf("restack %s is already in progress", e.PlanID)
}

// Is returns true if the target error is ErrPlanInProgress
func (e *PlanInProgressError) Is(target error) bool {
	return target == ErrPlanInProgress
}

// NewPlanInProgressError creates a new PlanInProgressError
func NewPlanInProgressError(planID, branch string) *PlanInProgressError {
	return &PlanInProgressError{PlanID: planID, Branch: branch}
}

// RepositoryBusyError is returned when the repository lock is held by another process
type RepositoryBusyError struct {
	Path  string
	PID   int
	Owner string
}

func (e *RepositoryBusyError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("repository is busy: %s is held by pid %d", e.Path, e.PID)
	}
	return fmt.Sprintf("repository is busy: %s exists", e.Path)
}

// Is returns true if the target error is ErrRepositoryBusy
func (e *RepositoryBusyError) Is(target error) bool {
	return target == ErrRepositoryBusy
}

// NewRepositoryBusyError creates a new RepositoryBusyError
func NewRepositoryBusyError(path string, pid int, owner string) *RepositoryBusyError {
	return &RepositoryBusyError{Path: path, PID: pid, Owner: owner}
}

// SyncError wraps a remote host failure. Local state is never rolled back for it.
type SyncError struct {
	Branch string
	Op     string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %v", e.Op, e.Branch, e.Err)
}

// Is returns true if the target error is ErrSync
func (e *SyncError) Is(target error) bool {
	return target == ErrSync
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError creates a new SyncError
func NewSyncError(branch, op string, err error) *SyncError {
	return &SyncError{Branch: branch, Op: op, Err: err}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
