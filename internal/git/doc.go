// Package git provides the VCS collaborator of the stack engine.
//
// Repo answers read-only questions (tips, ancestry, merge bases, branch
// listings) through go-git and runs everything that mutates refs or the
// worktree through the git binary:
//   - Branch management (create, delete, checkout, reset)
//   - Detached rebases with conflict detection, continue and abort
//   - Commit listings for pull request titles and bodies
//   - Push and remote lookup
//
// This package should be the only place where git commands are executed.
package git
