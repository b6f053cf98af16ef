package remote

import (
	"fmt"
	"strings"

	"stacked.dev/st/internal/engine"
)

// StackCommentMarker identifies the navigation comment st maintains on every PR
const StackCommentMarker = "<!-- st:stack -->"

// RenderStackComment renders the navigation comment for branch as a nested
// list from the trunk down: the ancestors of branch, branch itself
// (highlighted) and every branch stacked above it, each linking to its PR.
// The output only depends on the forest, so an unchanged stack renders
// byte-identical text.
func RenderStackComment(forest *engine.Forest, branch string, order engine.ChildOrder) string {
	var sb strings.Builder
	sb.WriteString(StackCommentMarker)
	sb.WriteString("\nThis pull request is part of a stack:\n\n")

	depth := 0
	for _, name := range forest.AncestorsOf(branch) {
		writeStackEntry(&sb, forest, name, depth, false)
		depth++
	}
	forest.Walk(branch, order, func(name string, d int) {
		writeStackEntry(&sb, forest, name, depth+d, name == branch)
	})
	return sb.String()
}

func writeStackEntry(sb *strings.Builder, forest *engine.Forest, name string, depth int, current bool) {
	entry := fmt.Sprintf("`%s`", name)
	if b := forest.Get(name); b != nil && b.Remote != nil {
		entry = fmt.Sprintf("[#%d](%s) `%s`", b.Remote.PRNumber, b.Remote.URL, name)
	}
	if current {
		entry = "**" + entry + "** 👈"
	}
	sb.WriteString(strings.Repeat("  ", depth) + "- " + entry + "\n")
}

// prContent derives a title and body from the commits a branch adds
func prContent(branch string, subjects, bodies []string) (string, string) {
	switch len(subjects) {
	case 0:
		return branch, ""
	case 1:
		return subjects[0], strings.TrimSpace(bodies[0])
	}
	var sb strings.Builder
	for _, s := range subjects {
		sb.WriteString("- " + s + "\n")
	}
	return subjects[0], sb.String()
}
