package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eliasnord/neonpane/internal/api"
	"github.com/eliasnord/neonpane/internal/auth"
	"github.com/eliasnord/neonpane/internal/conn"
	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
	"github.com/eliasnord/neonpane/internal/state"
	"github.com/eliasnord/neonpane/internal/storage"
	"github.com/eliasnord/neonpane/internal/ui/components"
	"github.com/eliasnord/neonpane/internal/ui/views"
	"github.com/eliasnord/neonpane/internal/view"
	"github.com/google/uuid"
)

type ViewState int

const (
	ViewProfiles ViewState = iota
	ViewResources
	ViewConnect
)

type Model struct {
	state  ViewState
	width  int
	height int

	topBar    *components.TopBarModel
	statusBar *components.StatusBarModel

	profilesView  *views.ProfilesViewModel
	resourcesView *views.ResourcesViewModel
	connectView   *views.ConnectViewModel
	logsView      *views.LogsViewModel

	repository *storage.LocalRepository
	authMgr    *auth.Manager
	gateway    *api.Gateway
	machine    *state.Machine
	controller *view.Controller
	scanner    *conn.Scanner

	ctx context.Context
}

func NewModel(
	repository *storage.LocalRepository,
	authMgr *auth.Manager,
	gateway *api.Gateway,
	machine *state.Machine,
	controller *view.Controller,
	scanner *conn.Scanner,
) Model {
	return Model{
		state:         ViewProfiles,
		topBar:        components.NewTopBarModel(),
		statusBar:     components.NewStatusBarModel(),
		profilesView:  views.NewProfilesView(),
		resourcesView: views.NewResourcesView(),
		connectView:   views.NewConnectView(),
		logsView:      views.NewLogsView(),
		repository:    repository,
		authMgr:       authMgr,
		gateway:       gateway,
		machine:       machine,
		controller:    controller,
		scanner:       scanner,
		ctx:           context.Background(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProfiles(), m.scanLocal(false))
}

func (m Model) isInInputMode() bool {
	if m.logsView.IsActive() {
		return true
	}
	if m.state == ViewProfiles && m.profilesView.Mode == views.ProfileModeAdd {
		return true
	}
	return false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.topBar.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.profilesView.SetSize(msg.Width, msg.Height)
		m.resourcesView.SetSize(msg.Width, msg.Height)
		m.connectView.SetSize(msg.Width, msg.Height)
		m.logsView.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProfilesLoadedMsg:
		m.profilesView.SetProfiles(msg.profiles)
		for _, p := range msg.profiles {
			if p.IsActive {
				m.topBar.SetProfileName(p.Name)
				break
			}
		}
		return m, nil

	case SnapshotMsg:
		m.resourcesView.SetSnapshot(msg.Snapshot)
		sel := msg.Snapshot.Selection
		branchName := sel.BranchName
		if sel.ConnectionType == domain.ConnectionNew {
			branchName = sel.ParentBranchName
		}
		m.topBar.SetSelectionPath(sel.OrgName, sel.ProjectName, branchName)
		return m, nil

	case SignInRequiredMsg:
		m.state = ViewProfiles
		m.topBar.SetSelectionPath("", "", "")
		m.statusBar.SetError("Session expired. Select a profile to sign in again.")
		return m, m.loadProfiles()

	case ConnectionsLoadedMsg:
		m.connectView.SetConnections(msg.connections, msg.err)
		return m, nil

	case LocalEndpointsMsg:
		m.connectView.SetLocalEndpoints(msg.endpoints)
		return m, nil

	case VerifyResultMsg:
		m.connectView.SetVerifyResult(msg.err)
		return m, nil

	case ErrorMsg:
		m.statusBar.SetError(msg.err.Error())
		return m, nil

	case SuccessMsg:
		m.statusBar.SetMessage(msg.message)
		return m, nil
	}

	switch m.state {
	case ViewProfiles:
		cmd = m.profilesView.Update(msg)
	case ViewResources:
		cmd = m.resourcesView.Update(msg)
	case ViewConnect:
		cmd = m.connectView.Update(msg)
	}

	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.isInInputMode() {
		if m.logsView.IsActive() {
			switch key {
			case "esc", "q":
				m.logsView.Deactivate()
				return m, nil
			default:
				return m, m.logsView.Update(msg)
			}
		}

		switch key {
		case "enter":
			return m.handleProfileSave()
		case "esc":
			m.profilesView.ExitAddMode()
			return m, nil
		default:
			return m, m.profilesView.Update(msg)
		}
	}

	switch key {
	case "ctrl+l":
		m.logsView.Activate()
		return m, nil
	case "enter":
		return m.handleEnter()
	case "q", "esc":
		return m.navigateBack()
	}

	switch m.state {
	case ViewProfiles:
		switch key {
		case "a":
			m.profilesView.EnterAddMode()
			return m, nil
		case "d":
			return m.handleDeleteProfile()
		}
	case ViewResources:
		switch key {
		case "t":
			return m, m.toggleConnectionType()
		case "r":
			return m, m.refreshAll()
		case "c":
			return m.openConnect()
		case "n":
			return m, m.createBranchFromHover()
		}
	case ViewConnect:
		switch key {
		case "v":
			return m.handleVerify()
		case "s":
			m.statusBar.SetMessage("Rescanning local listeners...")
			return m, m.scanLocal(true)
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewProfiles:
		cmd = m.profilesView.Update(msg)
	case ViewResources:
		cmd = m.resourcesView.Update(msg)
	case ViewConnect:
		cmd = m.connectView.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case ViewProfiles:
		return m.handleActivateProfile()
	case ViewResources:
		return m, m.handleResourceSelect()
	case ViewConnect:
		return m.handleVerify()
	}
	return m, nil
}

func (m Model) navigateBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case ViewResources:
		m.state = ViewProfiles
		return m, m.loadProfiles()
	case ViewConnect:
		m.state = ViewResources
		return m, nil
	case ViewProfiles:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleProfileSave() (tea.Model, tea.Cmd) {
	profile := m.profilesView.GetNewProfile()
	if profile.Name == "" || profile.Token == "" {
		m.statusBar.SetError("Name and API key are required")
		return m, nil
	}
	profile.ID = uuid.New().String()

	if err := m.repository.SaveProfile(profile); err != nil {
		return m, func() tea.Msg {
			return ErrorMsg{err: err}
		}
	}

	m.profilesView.ExitAddMode()
	m.statusBar.SetMessage("Profile added")
	return m, m.loadProfiles()
}

func (m Model) handleActivateProfile() (tea.Model, tea.Cmd) {
	profile := m.profilesView.GetSelectedProfile()
	if profile == nil {
		return m, nil
	}

	if err := m.repository.SetActiveProfile(profile.ID); err != nil {
		return m, func() tea.Msg {
			return ErrorMsg{err: err}
		}
	}

	logger.Log("UI: Activating profile %s", profile.Name)
	m.topBar.SetProfileName(profile.Name)
	m.state = ViewResources
	m.statusBar.SetMessage(fmt.Sprintf("Signed in with profile %s", profile.Name))

	// Signing in notifies the sync controller, which refreshes organizations
	// and pushes a snapshot back into the program.
	token := profile.Token
	return m, func() tea.Msg {
		m.authMgr.SignInWithPersonalToken(token)
		return nil
	}
}

func (m Model) handleDeleteProfile() (tea.Model, tea.Cmd) {
	profile := m.profilesView.GetSelectedProfile()
	if profile == nil {
		return m, nil
	}

	if err := m.repository.DeleteProfile(profile.ID); err != nil {
		return m, func() tea.Msg {
			return ErrorMsg{err: err}
		}
	}

	return m, m.loadProfiles()
}

func (m Model) handleResourceSelect() tea.Cmd {
	switch m.resourcesView.FocusedPane() {
	case views.PaneOrgs:
		org := m.resourcesView.HoveredOrg()
		if org == nil {
			return nil
		}
		id := org.ID
		return func() tea.Msg {
			if err := m.machine.SelectOrg(m.ctx, id); err != nil {
				return ErrorMsg{err: err}
			}
			m.controller.RequestUpdate()
			return nil
		}
	case views.PaneProjects:
		project := m.resourcesView.HoveredProject()
		if project == nil {
			return nil
		}
		id := project.ID
		return func() tea.Msg {
			if err := m.machine.SelectProject(m.ctx, id); err != nil {
				return ErrorMsg{err: err}
			}
			m.controller.RequestUpdate()
			return nil
		}
	case views.PaneBranches:
		branch := m.resourcesView.HoveredBranch()
		if branch == nil {
			return nil
		}
		id := branch.ID
		return func() tea.Msg {
			if err := m.machine.SelectBranch(m.ctx, id); err != nil {
				return ErrorMsg{err: err}
			}
			m.controller.RequestUpdate()
			return nil
		}
	}
	return nil
}

func (m Model) toggleConnectionType() tea.Cmd {
	snap := m.machine.Snapshot()
	next := domain.ConnectionNew
	if snap.Selection.ConnectionType == domain.ConnectionNew {
		next = domain.ConnectionExisting
	}

	return func() tea.Msg {
		m.machine.SetConnectionType(next)
		m.controller.RequestUpdate()
		return SuccessMsg{message: fmt.Sprintf("Connection type: %s", next)}
	}
}

func (m Model) refreshAll() tea.Cmd {
	return func() tea.Msg {
		m.gateway.InvalidateCaches()
		m.scanner.Invalidate()
		if err := m.machine.RefreshOrganizations(m.ctx); err != nil {
			return ErrorMsg{err: err}
		}
		m.controller.RequestUpdate()
		return SuccessMsg{message: "Refreshed"}
	}
}

func (m Model) createBranchFromHover() tea.Cmd {
	snap := m.machine.Snapshot()
	sel := snap.Selection
	if sel.ProjectID == "" || sel.ParentBranchID == "" {
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("select a project and a parent branch first")}
		}
	}

	name := fmt.Sprintf("dev-%s", uuid.New().String()[:8])
	return func() tea.Msg {
		branch, err := m.gateway.CreateBranch(m.ctx, sel.ProjectID, name, sel.ParentBranchID)
		if err != nil {
			return ErrorMsg{err: err}
		}
		if err := m.machine.SelectProject(m.ctx, sel.ProjectID); err != nil {
			return ErrorMsg{err: err}
		}
		m.controller.RequestUpdate()
		return SuccessMsg{message: fmt.Sprintf("Created branch %s", branch.Name)}
	}
}

func (m Model) openConnect() (tea.Model, tea.Cmd) {
	snap := m.machine.Snapshot()
	sel := snap.Selection

	branchID := sel.BranchID
	if sel.ConnectionType == domain.ConnectionNew {
		branchID = sel.ParentBranchID
	}
	if sel.ProjectID == "" || branchID == "" {
		m.statusBar.SetError("Select a project and branch first")
		return m, nil
	}

	m.state = ViewConnect
	m.connectView.SetLoading()

	projectID := sel.ProjectID
	return m, tea.Batch(
		func() tea.Msg {
			infos, err := m.gateway.GetBranchConnectionInfo(m.ctx, projectID, branchID)
			return ConnectionsLoadedMsg{connections: infos, err: err}
		},
		m.scanLocal(false),
	)
}

func (m Model) handleVerify() (tea.Model, tea.Cmd) {
	info := m.connectView.SelectedConnection()
	if info == nil {
		return m, nil
	}

	m.connectView.SetVerifyPending()
	target := *info
	return m, func() tea.Msg {
		err := conn.Verify(m.ctx, target)
		if err != nil {
			logger.LogError("VERIFY", target.Host, err)
		}
		return VerifyResultMsg{err: err}
	}
}

func (m Model) loadProfiles() tea.Cmd {
	return func() tea.Msg {
		profiles, err := m.repository.ListProfiles()
		if err != nil {
			return ErrorMsg{err: err}
		}
		return ProfilesLoadedMsg{profiles: profiles}
	}
}

func (m Model) scanLocal(invalidate bool) tea.Cmd {
	return func() tea.Msg {
		if invalidate {
			m.scanner.Invalidate()
		}
		return LocalEndpointsMsg{endpoints: m.scanner.Detect(m.ctx)}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return MutedStyle.Render("Loading...")
	}

	var content string

	if m.logsView.IsActive() {
		content = m.logsView.View()
	} else {
		switch m.state {
		case ViewProfiles:
			content = m.profilesView.View()
		case ViewResources:
			content = m.resourcesView.View()
		case ViewConnect:
			content = m.connectView.View()
		}
	}

	return m.topBar.View() + "\n" + content + "\n" + m.statusBar.View()
}

// SnapshotMsg carries the latest machine state into the program. Sent by the
// sync controller's renderer.
type SnapshotMsg struct {
	Snapshot state.Snapshot
}

// SignInRequiredMsg is sent when the session expires and the panel must fall
// back to the profile picker.
type SignInRequiredMsg struct{}

type ProfilesLoadedMsg struct {
	profiles []domain.Profile
}

type ConnectionsLoadedMsg struct {
	connections []domain.ConnectionInfo
	err         error
}

type LocalEndpointsMsg struct {
	endpoints []conn.LocalEndpoint
}

type VerifyResultMsg struct {
	err error
}

type ErrorMsg struct {
	err error
}

type SuccessMsg struct {
	message string
}
