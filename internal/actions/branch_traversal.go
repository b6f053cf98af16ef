package actions

import (
	"fmt"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
)

// Direction represents the traversal direction
type Direction string

const (
	// DirectionUp moves to a child branch
	DirectionUp Direction = "UP"
	// DirectionDown moves to the parent branch
	DirectionDown Direction = "DOWN"
)

// TraverseOptions contains options for the up and down commands
type TraverseOptions struct {
	Direction Direction
	Steps     int
}

// SwitchBranchAction moves along the stack from the current branch. Going up
// from a branch with several children asks which one to follow.
func SwitchBranchAction(ctx *runtime.Context, opts TraverseOptions) error {
	current, err := ctx.Engine.CurrentBranch(ctx.Context)
	if err != nil {
		return err
	}
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	if !forest.IsTracked(current) {
		return sterrors.NewNotTrackedError(current)
	}

	steps := max(opts.Steps, 1)
	target := current
	for range steps {
		var next string
		switch opts.Direction {
		case DirectionDown:
			next = forest.ParentOf(target)
		case DirectionUp:
			children := forest.OrderedChildren(target, ctx.Engine.ChildOrder())
			switch len(children) {
			case 0:
			case 1:
				next = children[0]
			default:
				choices := make([]tui.BranchChoice, len(children))
				for i, c := range children {
					choices[i] = tui.BranchChoice{Display: c, Value: c}
				}
				if next, err = tui.PromptBranchSelection(fmt.Sprintf("%s has several children, pick one", target), choices, children[0]); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("invalid direction: %s", opts.Direction)
		}
		if next == "" {
			break
		}
		target = next
	}

	if target == current {
		where := "top"
		if opts.Direction == DirectionDown {
			where = "bottom"
		}
		ctx.Splog.Info("Already at the %s of the stack.", where)
		return nil
	}
	return CheckoutAction(ctx, CheckoutOptions{BranchName: target})
}
