package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	topBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(lipgloss.Color("#F9FAFB")).
			Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E599")).
			Bold(true)

	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#93C5FD"))
)

// TopBarModel renders the single-line header with the active profile
// and the current org/project/branch selection path.
type TopBarModel struct {
	width       int
	profileName string
	orgName     string
	projectName string
	branchName  string
}

func NewTopBarModel() *TopBarModel {
	return &TopBarModel{}
}

func (m *TopBarModel) SetWidth(width int) {
	m.width = width
}

func (m *TopBarModel) SetProfileName(name string) {
	m.profileName = name
}

func (m *TopBarModel) SetSelectionPath(org, project, branch string) {
	m.orgName = org
	m.projectName = project
	m.branchName = branch
}

func (m *TopBarModel) View() string {
	left := brandStyle.Render("neonpane")
	if m.profileName != "" {
		left += " " + crumbStyle.Render(fmt.Sprintf("[%s]", m.profileName))
	}

	crumbs := []string{}
	for _, c := range []string{m.orgName, m.projectName, m.branchName} {
		if c != "" {
			crumbs = append(crumbs, c)
		}
	}
	right := crumbStyle.Render(strings.Join(crumbs, " / "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right

	return topBarStyle.Width(m.width).Render(line)
}
