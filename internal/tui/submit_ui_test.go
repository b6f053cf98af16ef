package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("Submitting", func() error { return nil })
	require.Contains(t, m.View(), "Submitting")

	boom := errors.New("boom")
	next, cmd := m.Update(workDoneMsg{err: boom})
	require.NotNil(t, cmd)
	final := next.(spinnerModel)
	require.True(t, final.done)
	require.ErrorIs(t, final.err, boom)
	require.Empty(t, final.View())
}

func TestRunWithSpinnerWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf})
	require.NoError(t, err)

	ran := false
	require.NoError(t, RunWithSpinner(splog, "Syncing", func() error {
		ran = true
		return nil
	}))
	require.True(t, ran)
	require.Equal(t, "Syncing\n", buf.String())
}

func TestPrintSubmitResults(t *testing.T) {
	var buf bytes.Buffer
	splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf})
	require.NoError(t, err)

	PrintSubmitResults(splog, []SubmitItem{
		{Branch: "a", Number: 1, URL: "https://example.com/1", Created: true},
		{Branch: "b", Number: 2, URL: "https://example.com/2", Changed: true},
		{Branch: "c", Number: 3},
		{Branch: "d", Err: errors.New("502")},
	})
	want := "  ✓ a created #1 https://example.com/1\n" +
		"  ✓ b updated #2 https://example.com/2\n" +
		"  · c up to date #3\n" +
		"  ✗ d 502\n" +
		"⚠️  1 of 4 branches failed to sync; local changes were kept, rerun to retry\n"
	require.Equal(t, want, buf.String())
}
