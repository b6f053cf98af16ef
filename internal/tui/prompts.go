package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/tui/components/tree"
	"stacked.dev/st/internal/utils"
)

// ErrInteractiveDisabled is returned when a prompt would be needed but stdin
// is not a terminal or ST_NON_INTERACTIVE is set
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled")

// ErrCanceled is returned when the user backs out of a prompt
var ErrCanceled = errors.New("canceled")

func checkInteractiveAllowed() error {
	if !utils.IsInteractive() {
		return ErrInteractiveDisabled
	}
	return nil
}

// PromptConfirm asks a yes/no question
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}
	answer := defaultValue
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: defaultValue}, &answer); err != nil {
		return false, ErrCanceled
	}
	return answer, nil
}

// PromptInput asks for a line of text
func PromptInput(message, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message, Default: defaultValue}, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", ErrCanceled
	}
	return strings.TrimSpace(answer), nil
}

// BranchChoice is one entry of the branch picker
type BranchChoice struct {
	Display string // may include tree drawing
	Value   string // branch name
}

// BranchSelectModel is a branch picker with type-to-filter
type BranchSelectModel struct {
	Choices  []BranchChoice
	Filtered []BranchChoice
	Filter   string
	Cursor   int
	Selected string
	Done     bool
	Err      error
	Message  string
}

// NewBranchSelectModel creates a picker with the cursor on initial
func NewBranchSelectModel(message string, choices []BranchChoice, initial string) BranchSelectModel {
	m := BranchSelectModel{Choices: choices, Message: message}
	m.updateFiltered()
	for i, c := range m.Filtered {
		if c.Value == initial {
			m.Cursor = i
		}
	}
	return m
}

// Init initializes the bubbletea model
func (m BranchSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses
func (m BranchSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEnter:
		if m.Cursor >= 0 && m.Cursor < len(m.Filtered) {
			m.Selected = m.Filtered[m.Cursor].Value
			m.Done = true
			return m, tea.Quit
		}
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Err = ErrCanceled
		m.Done = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.Cursor > 0 {
			m.Cursor--
		} else {
			m.Cursor = len(m.Filtered) - 1
		}
	case tea.KeyDown:
		if m.Cursor < len(m.Filtered)-1 {
			m.Cursor++
		} else {
			m.Cursor = 0
		}
	case tea.KeyBackspace:
		if len(m.Filter) > 0 {
			m.Filter = m.Filter[:len(m.Filter)-1]
			m.updateFiltered()
		}
	case tea.KeyRunes:
		m.Filter += string(key.Runes)
		m.updateFiltered()
	}
	return m, nil
}

func (m *BranchSelectModel) updateFiltered() {
	if m.Filter == "" {
		m.Filtered = m.Choices
	} else {
		filter := strings.ToLower(m.Filter)
		m.Filtered = nil
		for _, choice := range m.Choices {
			if strings.Contains(strings.ToLower(choice.Value), filter) {
				m.Filtered = append(m.Filtered, choice)
			}
		}
	}
	if m.Cursor >= len(m.Filtered) {
		m.Cursor = len(m.Filtered) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// View renders the picker
func (m BranchSelectModel) View() string {
	if m.Done {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.Message))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s\n\n", lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(m.Filter)))
	} else {
		b.WriteString("\n")
	}

	if len(m.Filtered) == 0 {
		b.WriteString("No branches match the filter.\n")
	}
	for i, choice := range m.Filtered {
		cursor := " "
		if i == m.Cursor {
			cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(">")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, choice.Display))
	}

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("\n(Enter to select, Ctrl+C to cancel, type to filter)"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}

// PromptBranchSelection runs the branch picker
func PromptBranchSelection(message string, choices []BranchChoice, initial string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	if len(choices) == 0 {
		return "", errors.New("no branches to choose from")
	}

	p := tea.NewProgram(NewBranchSelectModel(message, choices, initial), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return "", err
	}
	final, ok := model.(BranchSelectModel)
	if !ok {
		return "", errors.New("unexpected model type")
	}
	if final.Err != nil {
		return "", final.Err
	}
	return final.Selected, nil
}

// BranchChoices lists every tracked branch drawn as the log tree
func BranchChoices(forest *engine.Forest, current string, order engine.ChildOrder) []BranchChoice {
	lines := tree.NewRenderer(forest, current, order).RenderAll()
	choices := make([]BranchChoice, len(lines))
	for i, l := range lines {
		choices[i] = BranchChoice{Display: l.Text, Value: l.Branch}
	}
	return choices
}
