package tree

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
)

func init() {
	// Plain output so lines can be compared verbatim
	lipgloss.SetColorProfile(termenv.Ascii)
}

func sampleForest(t *testing.T) *engine.Forest {
	t.Helper()
	f := engine.NewForest("main")
	require.NoError(t, f.Track("a", "main"))
	require.NoError(t, f.Track("b", "a"))
	require.NoError(t, f.Track("c", "main"))
	require.NoError(t, f.SetTip("main", "m1"))
	require.NoError(t, f.MarkClean("a", "m1"))
	require.NoError(t, f.SetTip("a", "a1"))
	require.NoError(t, f.MarkClean("b", "a1"))
	require.NoError(t, f.SetRemote("a", &engine.RemoteLink{PRNumber: 3, State: engine.PRStateMerged}))
	return f
}

func TestRenderAll(t *testing.T) {
	r := NewRenderer(sampleForest(t), "b", engine.ChildOrderInsertion)
	want := "○ main\n" +
		"├─○ a #3 (merged)\n" +
		"│ └─● b (current)\n" +
		"└─○ c (needs restack)\n"
	require.Equal(t, want, String(r.RenderAll()))
}

func TestRenderSubtree(t *testing.T) {
	f := sampleForest(t)
	r := NewRenderer(f, "", engine.ChildOrderInsertion)
	r.Annotations["b"] = Annotation{Label: "2 commits"}

	lines := r.Render("a")
	require.Len(t, lines, 2)
	require.Equal(t, "a", lines[0].Branch)
	require.Equal(t, "└─○ b 2 commits", lines[1].Text)

	require.Nil(t, r.Render("missing"))
}

func TestRenderOrder(t *testing.T) {
	f := engine.NewForest("main")
	require.NoError(t, f.Track("zeta", "main"))
	require.NoError(t, f.Track("alpha", "main"))

	var names []string
	for _, l := range NewRenderer(f, "", engine.ChildOrderAlphabetical).RenderAll() {
		names = append(names, l.Branch)
	}
	require.Equal(t, []string{"main", "alpha", "zeta"}, names)
}
