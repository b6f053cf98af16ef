package utils

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether prompts may be shown
func IsInteractive() bool {
	if os.Getenv("ST_NON_INTERACTIVE") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
