package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/state"
)

type ResourcePane int

const (
	PaneOrgs ResourcePane = iota
	PaneProjects
	PaneBranches
)

var (
	paneTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E599")).
			Bold(true)

	focusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#00E599")).
				Padding(0, 1)

	blurredPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#6B7280")).
				Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F9FAFB")).
				Background(lipgloss.Color("#00E599")).
				Bold(true)

	chosenRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E599"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
)

// ResourcesViewModel renders the org/project/branch panes and tracks which
// pane and row the cursor is on. Selection transitions themselves live in the
// state machine; this model only reflects snapshots pushed into it.
type ResourcesViewModel struct {
	width  int
	height int

	focus   ResourcePane
	cursors [3]int

	snapshot state.Snapshot
}

func NewResourcesView() *ResourcesViewModel {
	return &ResourcesViewModel{focus: PaneOrgs}
}

func (m *ResourcesViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSnapshot installs the latest machine state and clamps cursors that ran
// past the end of a shrunken list.
func (m *ResourcesViewModel) SetSnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.clampCursor(PaneOrgs, len(snap.Organizations))
	m.clampCursor(PaneProjects, len(snap.Projects))
	m.clampCursor(PaneBranches, len(snap.Branches))
}

func (m *ResourcesViewModel) clampCursor(pane ResourcePane, n int) {
	if m.cursors[pane] >= n {
		m.cursors[pane] = n - 1
	}
	if m.cursors[pane] < 0 {
		m.cursors[pane] = 0
	}
}

func (m *ResourcesViewModel) FocusedPane() ResourcePane {
	return m.focus
}

func (m *ResourcesViewModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "left", "h":
		if m.focus > PaneOrgs {
			m.focus--
		}
	case "right", "l":
		if m.focus < PaneBranches {
			m.focus++
		}
	case "up", "k":
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}
	case "down", "j":
		if m.cursors[m.focus] < m.paneLen(m.focus)-1 {
			m.cursors[m.focus]++
		}
	}

	return nil
}

func (m *ResourcesViewModel) paneLen(pane ResourcePane) int {
	switch pane {
	case PaneOrgs:
		return len(m.snapshot.Organizations)
	case PaneProjects:
		return len(m.snapshot.Projects)
	default:
		return len(m.snapshot.Branches)
	}
}

// HoveredOrg returns the organization under the cursor, or nil.
func (m *ResourcesViewModel) HoveredOrg() *domain.Organization {
	i := m.cursors[PaneOrgs]
	if i < 0 || i >= len(m.snapshot.Organizations) {
		return nil
	}
	org := m.snapshot.Organizations[i]
	return &org
}

func (m *ResourcesViewModel) HoveredProject() *domain.Project {
	i := m.cursors[PaneProjects]
	if i < 0 || i >= len(m.snapshot.Projects) {
		return nil
	}
	p := m.snapshot.Projects[i]
	return &p
}

func (m *ResourcesViewModel) HoveredBranch() *domain.Branch {
	i := m.cursors[PaneBranches]
	if i < 0 || i >= len(m.snapshot.Branches) {
		return nil
	}
	b := m.snapshot.Branches[i]
	return &b
}

func (m *ResourcesViewModel) View() string {
	paneWidth := m.width/3 - 4
	if paneWidth < 16 {
		paneWidth = 16
	}
	paneHeight := m.height - 6
	if paneHeight < 3 {
		paneHeight = 3
	}

	orgs := m.renderPane(PaneOrgs, "Organizations", m.orgRows(), m.snapshot.Loading.Orgs, paneWidth, paneHeight)
	projects := m.renderPane(PaneProjects, "Projects", m.projectRows(), m.snapshot.Loading.Projects, paneWidth, paneHeight)
	branches := m.renderPane(PaneBranches, m.branchPaneTitle(), m.branchRows(), m.snapshot.Loading.Branches, paneWidth, paneHeight)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, orgs, projects, branches)

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("←/→: Pane | ↑/↓: Move | Enter: Select | t: Connection type | r: Refresh | q: Back")

	return panes + "\n" + help
}

func (m *ResourcesViewModel) branchPaneTitle() string {
	if m.snapshot.Selection.ConnectionType == domain.ConnectionNew {
		return "Parent Branches (new)"
	}
	return "Branches (existing)"
}

type paneRow struct {
	label  string
	chosen bool
}

func (m *ResourcesViewModel) orgRows() []paneRow {
	rows := make([]paneRow, len(m.snapshot.Organizations))
	for i, org := range m.snapshot.Organizations {
		rows[i] = paneRow{label: org.Name, chosen: org.ID == m.snapshot.Selection.OrgID}
	}
	return rows
}

func (m *ResourcesViewModel) projectRows() []paneRow {
	rows := make([]paneRow, len(m.snapshot.Projects))
	for i, p := range m.snapshot.Projects {
		rows[i] = paneRow{label: p.Name, chosen: p.ID == m.snapshot.Selection.ProjectID}
	}
	return rows
}

func (m *ResourcesViewModel) branchRows() []paneRow {
	chosenID := m.snapshot.Selection.BranchID
	if m.snapshot.Selection.ConnectionType == domain.ConnectionNew {
		chosenID = m.snapshot.Selection.ParentBranchID
	}

	rows := make([]paneRow, len(m.snapshot.Branches))
	for i, b := range m.snapshot.Branches {
		rows[i] = paneRow{label: b.Name, chosen: b.ID == chosenID}
	}
	return rows
}

func (m *ResourcesViewModel) renderPane(pane ResourcePane, title string, rows []paneRow, loading bool, width, height int) string {
	var b strings.Builder

	b.WriteString(paneTitleStyle.Render(title) + "\n")

	switch {
	case loading:
		b.WriteString(loadingStyle.Render("Loading..."))
	case len(rows) == 0:
		b.WriteString(loadingStyle.Render("(none)"))
	default:
		for i, row := range rows {
			if i >= height {
				b.WriteString(loadingStyle.Render(fmt.Sprintf("... %d more", len(rows)-height)))
				break
			}

			label := row.label
			if row.chosen {
				label = "● " + label
			} else {
				label = "  " + label
			}

			switch {
			case pane == m.focus && i == m.cursors[pane]:
				b.WriteString(selectedRowStyle.Render(label))
			case row.chosen:
				b.WriteString(chosenRowStyle.Render(label))
			default:
				b.WriteString(label)
			}
			b.WriteString("\n")
		}
	}

	style := blurredPaneStyle
	if pane == m.focus {
		style = focusedPaneStyle
	}
	return style.Width(width).Height(height + 1).Render(b.String())
}
