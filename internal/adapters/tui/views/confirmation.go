package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"drivebak/internal/adapters/tui/styles"
)

// ConfirmKeyMap defines key bindings for the confirmation prompt
type ConfirmKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "answer"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "abort"),
	),
}

// ConfirmModel asks a yes/no question through a one-line text input.
// Only answers starting with y or Y confirm.
type ConfirmModel struct {
	ViewState
	Question string
	Input    textinput.Model
	Keys     ConfirmKeyMap

	done      bool
	confirmed bool
}

// NewConfirmModel creates a focused confirmation prompt
func NewConfirmModel(question string) *ConfirmModel {
	input := textinput.New()
	input.Placeholder = "y/n"
	input.CharLimit = 16
	input.Prompt = ""
	input.Focus()

	return &ConfirmModel{
		Question: question,
		Input:    input,
		Keys:     DefaultConfirmKeys,
	}
}

// IsYes reports whether an answer confirms
func IsYes(answer string) bool {
	return answer != "" && (answer[0] == 'y' || answer[0] == 'Y')
}

// Init returns the blink command for the input
func (m *ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the prompt
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Cancel):
			m.done = true
			m.confirmed = false
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Submit):
			m.done = true
			m.confirmed = IsYes(m.Input.Value())
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// View renders the prompt
func (m *ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(m.Question))
	b.WriteString(" ")
	b.WriteString(m.Input.View())
	b.WriteString("\n")
	b.WriteString(helpLine(m.Keys.Submit, m.Keys.Cancel))
	b.WriteString("\n")
	return b.String()
}

// Done reports whether the user answered or aborted
func (m *ConfirmModel) Done() bool {
	return m.done
}

// Confirmed reports whether the answer was yes
func (m *ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// helpLine renders "key description" pairs separated by bullets
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}
