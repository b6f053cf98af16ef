// Package actions implements the st commands.
//
// Each action corresponds to a command (create, restack, submit, sync, etc.)
// and orchestrates the engine, git and the remote coordinator for it.
//
// Key patterns:
//   - Actions accept a runtime.Context which provides the Engine, Repo and Splog
//   - Actions that change the branch graph run under the repository lock
//   - A restack that stops on a conflict is reported as instructions, not an error
package actions
