package actions

import (
	"errors"
	"fmt"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
)

// AbortOptions contains options for the abort command
type AbortOptions struct {
	Force bool
}

// AbortAction cancels the outstanding restack and puts every branch back
func AbortAction(ctx *runtime.Context, opts AbortOptions) error {
	plan, err := ctx.Engine.Status()
	if err != nil {
		return err
	}
	if plan == nil {
		ctx.Splog.Info("No restack in progress to abort.")
		return nil
	}

	if !opts.Force {
		msg := fmt.Sprintf("Abort the restack of %s? Branches restacked so far will be put back.", plan.Root)
		confirmed, err := tui.PromptConfirm(msg, false)
		if errors.Is(err, tui.ErrInteractiveDisabled) {
			return fmt.Errorf("refusing to abort without confirmation, use --force")
		}
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Splog.Info("Abort canceled.")
			return nil
		}
	}

	return withLock(ctx, func() error {
		if err := ctx.Engine.Abort(ctx.Context); err != nil {
			return fmt.Errorf("failed to abort restack: %w", err)
		}
		ctx.Splog.Info("Aborted the restack of %s; %d completed steps were rolled back.", plan.Root, plan.Cursor)
		return nil
	})
}
