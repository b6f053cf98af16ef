package actions

import (
	"fmt"
	"strings"
	"time"

	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/internal/tui/style"
)

// CreateOptions contains options for the create command
type CreateOptions struct {
	BranchName string
	// Message commits the working changes on the new branch
	Message string
	// All stages every change before committing
	All bool
}

// CreateAction creates a new branch stacked on top of the current branch and
// checks it out. Without a name, one is generated from the commit message.
func CreateAction(ctx *runtime.Context, opts CreateOptions) error {
	parent, err := ctx.Engine.CurrentBranch(ctx.Context)
	if err != nil {
		return err
	}

	name := opts.BranchName
	if name == "" {
		message := opts.Message
		if message == "" {
			if message, err = tui.PromptInput("Commit message for the new branch", ""); err != nil {
				return fmt.Errorf("no branch name given, pass one or use --message: %w", err)
			}
			opts.Message = message
		}
		if name, err = generateBranchName(ctx, message); err != nil {
			return err
		}
	}

	return withLock(ctx, func() error {
		if err := ctx.Engine.CreateBranch(ctx.Context, name, parent); err != nil {
			return err
		}
		if err := ctx.Engine.Checkout(ctx.Context, name); err != nil {
			return err
		}
		ctx.Splog.Info("Created %s on top of %s.", style.ColorBranchName(name, true), style.ColorBranchName(parent, false))

		if opts.Message == "" {
			return nil
		}
		if opts.All {
			if err := ctx.Repo.StageAll(ctx.Context); err != nil {
				return err
			}
		}
		staged, err := ctx.Repo.HasStagedChanges(ctx.Context)
		if err != nil {
			return err
		}
		if !staged {
			ctx.Splog.Tip("Nothing was staged, so no commit was made. Use --all to include every change.")
			return nil
		}
		return ctx.Repo.Commit(ctx.Context, git.CommitOptions{Message: opts.Message})
	})
}

func generateBranchName(ctx *runtime.Context, message string) (string, error) {
	pattern := ctx.Config.BranchPattern()
	username := ""
	if strings.Contains(string(pattern), "{username}") {
		name, err := ctx.Repo.UserName(ctx.Context)
		if err != nil {
			return "", err
		}
		username = name
	}
	return pattern.BranchName(message, username, time.Now())
}
