package actions

import (
	"fmt"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// PrintConflictStatus tells the user how to finish a restack stopped on a conflict
func PrintConflictStatus(ctx *runtime.Context, conflict *sterrors.ConflictError) error {
	splog := ctx.Splog
	splog.Info("%s", style.ColorRed(fmt.Sprintf("Hit conflict restacking %s on %s (step %d of %d).",
		conflict.Branch, conflict.Onto, conflict.Step+1, conflict.Total)))
	splog.Newline()

	files, err := ctx.Repo.UnmergedFiles(ctx.Context)
	if err == nil && len(files) > 0 {
		splog.Info("%s", style.ColorYellow("Unmerged files:"))
		for _, file := range files {
			splog.Info("%s", style.ColorRed(file))
		}
		splog.Newline()
	}

	splog.Info("%s", style.ColorYellow("To fix and continue the restack:"))
	splog.Info("(1) resolve the listed merge conflicts")
	splog.Info("(2) mark them as resolved with %s", style.ColorCyan("git add ."))
	splog.Info("(3) run %s to restack the remaining branches", style.ColorCyan("st continue"))
	splog.Tip("Run %s to put every branch back where it was.", style.ColorCyan("st abort"))
	return nil
}
