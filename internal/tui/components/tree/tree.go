// Package tree renders the branch forest as a tree.
package tree

import (
	"strings"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/tui/style"
)

const (
	// CurrentBranchSymbol marks the checked out branch
	CurrentBranchSymbol = "●"
	// BranchSymbol marks every other branch
	BranchSymbol = "○"
)

// Annotation holds extra per-branch display data
type Annotation struct {
	// Label is shown after everything else, dimmed
	Label string
}

// Line is one rendered row of the tree
type Line struct {
	Branch string
	Text   string
}

// Renderer draws a forest snapshot
type Renderer struct {
	forest      *engine.Forest
	current     string
	order       engine.ChildOrder
	Annotations map[string]Annotation
}

// NewRenderer creates a renderer for forest with current highlighted
func NewRenderer(forest *engine.Forest, current string, order engine.ChildOrder) *Renderer {
	return &Renderer{
		forest:      forest,
		current:     current,
		order:       order,
		Annotations: make(map[string]Annotation),
	}
}

// RenderAll renders every trunk with everything above it
func (r *Renderer) RenderAll() []Line {
	var out []Line
	for _, trunk := range r.forest.Trunks {
		out = append(out, r.Render(trunk)...)
	}
	return out
}

// Render renders root and its subtree
func (r *Renderer) Render(root string) []Line {
	if !r.forest.IsTracked(root) {
		return nil
	}
	var out []Line
	out = append(out, Line{Branch: root, Text: r.node(root, 0)})
	r.children(root, "", 1, &out)
	return out
}

// String joins rendered lines
func String(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) children(name, prefix string, depth int, out *[]Line) {
	kids := r.forest.OrderedChildren(name, r.order)
	for i, child := range kids {
		last := i == len(kids)-1
		connector, next := "├─", "│ "
		if last {
			connector, next = "└─", "  "
		}
		text := style.DepthColor(prefix+connector, depth-1) + r.node(child, depth)
		*out = append(*out, Line{Branch: child, Text: text})
		r.children(child, prefix+next, depth+1, out)
	}
}

func (r *Renderer) node(name string, depth int) string {
	isCurrent := name == r.current
	symbol := BranchSymbol
	if isCurrent {
		symbol = CurrentBranchSymbol
	}

	parts := []string{style.DepthColor(symbol, depth), style.ColorBranchName(name, isCurrent)}
	if isCurrent {
		parts = append(parts, style.ColorDim("(current)"))
	}

	b := r.forest.Get(name)
	if b.Parent != "" && !r.forest.IsClean(name) {
		parts = append(parts, style.ColorNeedsRestack("(needs restack)"))
	}
	if b.Remote != nil {
		parts = append(parts, style.ColorPRNumber(b.Remote.PRNumber))
		if s := style.ColorPRState(b.Remote.State); s != "" {
			parts = append(parts, s)
		}
	}
	if a, ok := r.Annotations[name]; ok && a.Label != "" {
		parts = append(parts, style.ColorDim(a.Label))
	}
	return strings.Join(parts, " ")
}
