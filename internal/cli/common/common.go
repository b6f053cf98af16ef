// Package common provides shared helper functions for CLI commands.
package common

import (
	"context"

	"github.com/spf13/cobra"

	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
)

type splogKey struct{}

// WithSplog stores the command's logger in ctx
func WithSplog(ctx context.Context, splog *tui.Splog) context.Context {
	return context.WithValue(ctx, splogKey{}, splog)
}

// Splog returns the logger set up by the root command
func Splog(cmd *cobra.Command) *tui.Splog {
	if splog, ok := cmd.Context().Value(splogKey{}).(*tui.Splog); ok {
		return splog
	}
	return tui.NewSplog()
}

// Run opens the repository in the working directory and runs fn with it.
// The repository must have been initialized with `st init`.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	return RunUninitialized(cmd, func(ctx *runtime.Context) error {
		if err := ctx.RequireInitialized(); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// RunUninitialized is Run for commands that work before `st init`
func RunUninitialized(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.OpenCwd(cmd.Context(), Splog(cmd))
	if err != nil {
		return err
	}
	return fn(ctx)
}

// CompleteBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns all branch names in the repository.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	repo, err := git.OpenRepo(".")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	branches, err := repo.BranchNames(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
