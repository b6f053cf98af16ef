package actions

import (
	"fmt"
	"slices"
	"strings"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// InfoOptions specifies options for the info command
type InfoOptions struct {
	BranchName string
	// Stat appends a diffstat against the parent
	Stat bool
}

// InfoAction displays a branch's place in its stack, its pull request and its commits
func InfoAction(ctx *runtime.Context, opts InfoOptions) error {
	current := currentBranch(ctx)
	branch := opts.BranchName
	if branch == "" {
		if current == "" {
			return fmt.Errorf("not on a branch and no branch specified")
		}
		branch = current
	}

	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	b := forest.Get(branch)
	if b == nil {
		return sterrors.NewNotTrackedError(branch)
	}
	isTrunk := forest.IsTrunk(branch)

	var lines []string
	name := style.ColorBranchName(branch, branch == current)
	if !isTrunk && !forest.IsClean(branch) {
		name += " " + style.ColorNeedsRestack("(needs restack)")
	}
	lines = append(lines, name)
	if b.Tip != "" {
		lines = append(lines, style.ColorDim("tip "+shortSHA(b.Tip)))
	}

	if link := b.Remote; link != nil {
		lines = append(lines, "", strings.TrimSpace(style.ColorPRNumber(link.PRNumber)+" "+style.ColorPRState(link.State)))
		if link.URL != "" {
			lines = append(lines, style.ColorMagenta(link.URL))
		}
	}

	if b.Parent != "" {
		lines = append(lines, "", fmt.Sprintf("%s: %s", style.ColorCyan("Parent"), b.Parent))
	}
	if children := forest.OrderedChildren(branch, ctx.Engine.ChildOrder()); len(children) > 0 {
		lines = append(lines, fmt.Sprintf("%s:", style.ColorCyan("Children")))
		for _, child := range children {
			lines = append(lines, fmt.Sprintf("▸ %s", child))
		}
	}

	if !isTrunk {
		commits, err := ctx.Engine.Commits(ctx.Context, branch)
		if err != nil {
			return err
		}
		lines = append(lines, "")
		// Newest first, like git log
		for _, c := range slices.Backward(commits) {
			lines = append(lines, style.ColorDim(fmt.Sprintf("%s - %s", shortSHA(c.SHA), c.Subject)))
		}

		if opts.Stat {
			stat, err := ctx.Repo.Runner().Run(ctx.Context, "diff", "--stat", b.Parent+"..."+branch)
			if err != nil {
				return err
			}
			if stat != "" {
				lines = append(lines, "", stat)
			}
		}
	}

	for _, line := range lines {
		ctx.Splog.Info("%s", line)
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
