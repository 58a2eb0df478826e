package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eliasnord/neonpane/internal/conn"
	"github.com/eliasnord/neonpane/internal/domain"
)

var (
	connectTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00E599")).
				Bold(true)

	connectLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280"))

	connectOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E599"))

	connectErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))
)

type VerifyStatus int

const (
	VerifyNone VerifyStatus = iota
	VerifyPending
	VerifyOK
	VerifyFailed
)

// ConnectViewModel shows the connection tuples for the selected branch, the
// locally detected Postgres listeners, and the last verification outcome.
type ConnectViewModel struct {
	width  int
	height int

	cursor       int
	connections  []domain.ConnectionInfo
	endpoints    []conn.LocalEndpoint
	showPassword bool
	loading      bool
	loadErr      error

	verify    VerifyStatus
	verifyErr error
}

func NewConnectView() *ConnectViewModel {
	return &ConnectViewModel{}
}

func (m *ConnectViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ConnectViewModel) SetLoading() {
	m.loading = true
	m.loadErr = nil
	m.verify = VerifyNone
}

func (m *ConnectViewModel) SetConnections(infos []domain.ConnectionInfo, err error) {
	m.loading = false
	m.connections = infos
	m.loadErr = err
	if m.cursor >= len(infos) {
		m.cursor = 0
	}
}

func (m *ConnectViewModel) SetLocalEndpoints(endpoints []conn.LocalEndpoint) {
	m.endpoints = endpoints
}

func (m *ConnectViewModel) SetVerifyPending() {
	m.verify = VerifyPending
	m.verifyErr = nil
}

func (m *ConnectViewModel) SetVerifyResult(err error) {
	if err != nil {
		m.verify = VerifyFailed
		m.verifyErr = err
		return
	}
	m.verify = VerifyOK
}

// SelectedConnection returns the tuple under the cursor, or nil.
func (m *ConnectViewModel) SelectedConnection() *domain.ConnectionInfo {
	if m.cursor < 0 || m.cursor >= len(m.connections) {
		return nil
	}
	info := m.connections[m.cursor]
	return &info
}

func (m *ConnectViewModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.connections)-1 {
			m.cursor++
		}
	case "p":
		m.showPassword = !m.showPassword
	}

	return nil
}

func (m *ConnectViewModel) View() string {
	var b strings.Builder

	b.WriteString(connectTitleStyle.Render("Connection Details") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(connectLabelStyle.Render("Loading connection details...") + "\n")
	case m.loadErr != nil:
		b.WriteString(connectErrStyle.Render("Error: "+m.loadErr.Error()) + "\n")
	case len(m.connections) == 0:
		b.WriteString(connectLabelStyle.Render("No branch selected.") + "\n")
	default:
		for i, info := range m.connections {
			marker := "  "
			if i == m.cursor {
				marker = "> "
			}

			password := strings.Repeat("*", 8)
			if m.showPassword {
				password = info.Password
			}

			b.WriteString(fmt.Sprintf("%s%s / %s\n", marker, info.Database, info.User))
			b.WriteString(connectLabelStyle.Render(fmt.Sprintf("    host=%s password=%s", info.Host, password)) + "\n")
		}
	}

	b.WriteString("\n" + connectTitleStyle.Render("Local Listeners") + "\n")
	if len(m.endpoints) == 0 {
		b.WriteString(connectLabelStyle.Render("No local Postgres listeners detected.") + "\n")
	} else {
		for _, ep := range m.endpoints {
			b.WriteString(fmt.Sprintf("  %s:%d\n", ep.Host, ep.Port))
		}
	}

	b.WriteString("\n")
	switch m.verify {
	case VerifyPending:
		b.WriteString(connectLabelStyle.Render("Verifying connection...") + "\n")
	case VerifyOK:
		b.WriteString(connectOKStyle.Render("✓ Connection verified") + "\n")
	case VerifyFailed:
		b.WriteString(connectErrStyle.Render("✗ Verification failed: "+m.verifyErr.Error()) + "\n")
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\n↑/↓: Move | p: Show password | v: Verify | s: Rescan | q: Back")
	b.WriteString(help)

	return b.String()
}
