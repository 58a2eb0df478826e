package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eliasnord/neonpane/internal/domain"
)

type ProfileItem struct {
	profile domain.Profile
}

func (i ProfileItem) FilterValue() string { return i.profile.Name }
func (i ProfileItem) Title() string {
	indicator := " "
	if i.profile.IsActive {
		indicator = "●"
	}
	return fmt.Sprintf("%s %s", indicator, i.profile.Name)
}
func (i ProfileItem) Description() string {
	if i.profile.BaseURL != "" {
		return i.profile.BaseURL
	}
	return "default endpoint"
}

type ProfileMode int

const (
	ProfileModeList ProfileMode = iota
	ProfileModeAdd
)

type ProfilesViewModel struct {
	list       list.Model
	Mode       ProfileMode
	nameInput  textinput.Model
	tokenInput textinput.Model
	urlInput   textinput.Model
	inputFocus int
	width      int
	height     int
}

func NewProfilesView() *ProfilesViewModel {
	items := []list.Item{}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Profiles"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	nameInput := textinput.New()
	nameInput.Placeholder = "Profile Name"
	nameInput.CharLimit = 50

	tokenInput := textinput.New()
	tokenInput.Placeholder = "API Key"
	tokenInput.CharLimit = 256
	tokenInput.EchoMode = textinput.EchoPassword

	urlInput := textinput.New()
	urlInput.Placeholder = "API URL (blank for default)"
	urlInput.CharLimit = 200

	return &ProfilesViewModel{
		list:       l,
		Mode:       ProfileModeList,
		nameInput:  nameInput,
		tokenInput: tokenInput,
		urlInput:   urlInput,
		inputFocus: 0,
	}
}

func (m *ProfilesViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-5)
}

func (m *ProfilesViewModel) SetProfiles(profiles []domain.Profile) {
	items := make([]list.Item, len(profiles))
	for i, p := range profiles {
		items[i] = ProfileItem{profile: p}
	}
	m.list.SetItems(items)
}

func (m *ProfilesViewModel) EnterAddMode() {
	m.Mode = ProfileModeAdd
	m.inputFocus = 0
	m.nameInput.Focus()
	m.nameInput.SetValue("")
	m.tokenInput.SetValue("")
	m.urlInput.SetValue("")
}

func (m *ProfilesViewModel) ExitAddMode() {
	m.Mode = ProfileModeList
	m.nameInput.Blur()
	m.tokenInput.Blur()
	m.urlInput.Blur()
}

func (m *ProfilesViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if m.Mode == ProfileModeAdd {
		return m.updateAddMode(msg)
	}

	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *ProfilesViewModel) updateAddMode(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.nextInput()
			return nil
		case "shift+tab", "up":
			m.prevInput()
			return nil
		}
	}

	switch m.inputFocus {
	case 0:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case 1:
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	case 2:
		m.urlInput, cmd = m.urlInput.Update(msg)
	}

	return cmd
}

func (m *ProfilesViewModel) nextInput() {
	m.blurAll()
	m.inputFocus = (m.inputFocus + 1) % 3
	m.focusCurrent()
}

func (m *ProfilesViewModel) prevInput() {
	m.blurAll()
	m.inputFocus = (m.inputFocus - 1 + 3) % 3
	m.focusCurrent()
}

func (m *ProfilesViewModel) blurAll() {
	m.nameInput.Blur()
	m.tokenInput.Blur()
	m.urlInput.Blur()
}

func (m *ProfilesViewModel) focusCurrent() {
	switch m.inputFocus {
	case 0:
		m.nameInput.Focus()
	case 1:
		m.tokenInput.Focus()
	case 2:
		m.urlInput.Focus()
	}
}

func (m *ProfilesViewModel) GetNewProfile() domain.Profile {
	return domain.Profile{
		Name:    m.nameInput.Value(),
		Token:   m.tokenInput.Value(),
		BaseURL: m.urlInput.Value(),
	}
}

func (m *ProfilesViewModel) GetSelectedProfile() *domain.Profile {
	item := m.list.SelectedItem()
	if item == nil {
		return nil
	}

	profileItem, ok := item.(ProfileItem)
	if !ok {
		return nil
	}

	return &profileItem.profile
}

func (m *ProfilesViewModel) View() string {
	if m.Mode == ProfileModeAdd {
		return m.viewAddMode()
	}
	return m.viewListMode()
}

func (m *ProfilesViewModel) viewListMode() string {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\nEnter: Activate | a: Add | d: Delete | q: Back")

	return m.list.View() + help
}

func (m *ProfilesViewModel) viewAddMode() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00E599")).
		Bold(true).
		Render("Add New Profile\n\n")

	b.WriteString(title)
	b.WriteString("Name:\n")
	b.WriteString(m.nameInput.View() + "\n\n")
	b.WriteString("API Key:\n")
	b.WriteString(m.tokenInput.View() + "\n\n")
	b.WriteString("API URL:\n")
	b.WriteString(m.urlInput.View() + "\n\n")

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("Tab: Next | Shift+Tab: Previous | Enter: Save | Esc: Cancel")

	b.WriteString(help)

	return b.String()
}
