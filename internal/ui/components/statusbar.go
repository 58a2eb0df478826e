package components

import "github.com/charmbracelet/lipgloss"

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#F9FAFB")).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#EF4444")).
				Bold(true).
				Padding(0, 1)
)

// StatusBarModel renders the bottom message line.
type StatusBarModel struct {
	width   int
	message string
	isError bool
}

func NewStatusBarModel() *StatusBarModel {
	return &StatusBarModel{}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}

func (m *StatusBarModel) SetMessage(message string) {
	m.message = message
	m.isError = false
}

func (m *StatusBarModel) SetError(message string) {
	m.message = message
	m.isError = true
}

func (m *StatusBarModel) ClearMessage() {
	m.message = ""
	m.isError = false
}

func (m *StatusBarModel) View() string {
	style := statusBarStyle
	if m.isError {
		style = statusErrorStyle
	}
	return style.Width(m.width).Render(m.message)
}
