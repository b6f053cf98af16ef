package actions

import (
	"errors"
	"fmt"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// ContinueOptions are options for the continue command
type ContinueOptions struct {
	AddAll bool
}

// ContinueAction resumes a restack stopped on a conflict
func ContinueAction(ctx *runtime.Context, opts ContinueOptions) error {
	return withLock(ctx, func() error {
		plan, err := ctx.Engine.Status()
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("no restack in progress, nothing to continue: %w", sterrors.ErrRebaseNotInProgress)
		}

		if opts.AddAll {
			if err := ctx.Repo.StageAll(ctx.Context); err != nil {
				return err
			}
		}

		if step := plan.Current(); step != nil {
			ctx.Splog.Debug("continuing plan %s at %s", plan.ID, step.Branch)
		}
		report, err := ctx.Engine.Continue(ctx.Context)
		if errors.Is(err, sterrors.ErrConflictUnresolved) {
			ctx.Splog.Warn("There are still unresolved conflicts.")
			ctx.Splog.Tip("Resolve them and stage the files with %s, or pass %s.", style.ColorCyan("git add"), style.ColorCyan("--all"))
			return err
		}
		return reportRestack(ctx, report, err)
	})
}
