// Package style holds the colors and text styles shared by st's output.
package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors stacks are drawn in, one per depth
var Palette = [][]int{
	{76, 203, 241},  // Light blue
	{77, 202, 125},  // Green
	{110, 173, 38},  // Dark green
	{245, 200, 0},   // Yellow
	{248, 144, 72},  // Orange
	{244, 98, 81},   // Red
	{235, 130, 188}, // Pink
	{159, 131, 228}, // Purple
	{80, 132, 243},  // Blue
}

// DepthColor renders text in the palette color for depth
func DepthColor(text string, depth int) string {
	if len(Palette) == 0 || depth < 0 {
		return text
	}
	color := Palette[depth%len(Palette)]
	hex := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", color[0], color[1], color[2]))
	return lipgloss.NewStyle().Foreground(hex).Render(text)
}

// ColorBranchName colors a branch name based on whether it's current
func ColorBranchName(branchName string, isCurrent bool) string {
	if isCurrent {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Render(branchName)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Render(branchName)
}

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render(text)
}

// ColorMagenta colors text magenta
func ColorMagenta(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render(text)
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(text)
}

// ColorNeedsRestack colors the "needs restack" marker
func ColorNeedsRestack(text string) string {
	return ColorYellow(text)
}

// ColorPRNumber colors a PR number
func ColorPRNumber(prNumber int) string {
	return ColorYellow(fmt.Sprintf("#%d", prNumber))
}

// ColorPRState colors a PR state; open PRs render nothing
func ColorPRState(state string) string {
	switch state {
	case "MERGED":
		return ColorMagenta("(merged)")
	case "CLOSED":
		return ColorRed("(closed)")
	default:
		return ""
	}
}
