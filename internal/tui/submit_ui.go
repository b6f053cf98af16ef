package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"stacked.dev/st/internal/tui/style"
)

// IsTTY reports whether stdin and stdout are both terminals
func IsTTY() bool {
	return (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

type workDoneMsg struct{ err error }

type spinnerModel struct {
	title   string
	spinner spinner.Model
	work    func() error
	err     error
	done    bool
}

func newSpinnerModel(title string, work func() error) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{title: title, spinner: s, work: work}
}

func (m spinnerModel) Init() tea.Cmd {
	work := m.work
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return workDoneMsg{err: work()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.title)
}

// RunWithSpinner runs work while showing a spinner. Without a terminal it
// prints the title and runs work directly. The splog is quiet meanwhile so
// library logging does not tear the spinner line.
func RunWithSpinner(splog *Splog, title string, work func() error) error {
	if !IsTTY() {
		splog.Info("%s", title)
		return work()
	}

	splog.SetQuiet(true)
	defer splog.SetQuiet(false)

	p := tea.NewProgram(newSpinnerModel(title, work), tea.WithInput(nil), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return err
	}
	if final, ok := model.(spinnerModel); ok {
		return final.err
	}
	return nil
}

// SubmitItem is the outcome for one submitted branch
type SubmitItem struct {
	Branch  string
	Number  int
	URL     string
	Created bool
	Changed bool
	Err     error
}

// PrintSubmitResults reports the outcome of a submit or sync, one line per branch
func PrintSubmitResults(splog *Splog, items []SubmitItem) {
	failed := 0
	for _, item := range items {
		branch := style.ColorBranchName(item.Branch, false)
		switch {
		case item.Err != nil:
			failed++
			splog.Info("  %s %s %s", style.ColorRed("✗"), branch, style.ColorRed(item.Err.Error()))
		case item.Created:
			splog.Info("  %s %s created %s %s", style.ColorGreen("✓"), branch, style.ColorPRNumber(item.Number), style.ColorDim(item.URL))
		case item.Changed:
			splog.Info("  %s %s updated %s %s", style.ColorGreen("✓"), branch, style.ColorPRNumber(item.Number), style.ColorDim(item.URL))
		default:
			splog.Info("  %s %s up to date %s", style.ColorDim("·"), branch, style.ColorPRNumber(item.Number))
		}
	}
	if failed > 0 {
		splog.Warn("%d of %d branches failed to sync; local changes were kept, rerun to retry", failed, len(items))
	}
}
