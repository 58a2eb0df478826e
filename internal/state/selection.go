package state

import (
	"context"
	"errors"
	"sync"

	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
)

var (
	// ErrNoProjectSelected means a branch transition was attempted without a
	// selected project.
	ErrNoProjectSelected = errors.New("no project selected")

	// ErrProjectNotFound means the requested project is absent even after a
	// fresh project-list fetch. The prior selection is preserved.
	ErrProjectNotFound = errors.New("project not found")

	// ErrBranchNotFound means the requested branch is absent even after a
	// fresh branch-list fetch. The prior selection is preserved.
	ErrBranchNotFound = errors.New("branch not found")
)

// Snapshot is an immutable copy of the machine's state for rendering.
type Snapshot struct {
	Selection     domain.Selection
	Organizations []domain.Organization
	Projects      []domain.Project
	Branches      []domain.Branch
	Loading       domain.LoadingState
}

// Machine holds the current org/project/branch selection and applies the
// cascading invalidation rules.
//
// Transitions are serialized: transMu admits one transition at a time, so a
// selection write always happens strictly before its dependent fetch is
// issued. Each transition is additionally tagged with a monotonically
// increasing sequence number; a fetch result is applied only while its tag is
// still current, so a reset (sign-out, identity change) racing an in-flight
// transition makes that transition's result land in the void instead of
// resurrecting stale state.
type Machine struct {
	transMu sync.Mutex
	mu      sync.Mutex

	gateway domain.Gateway

	seq      uint64
	sel      domain.Selection
	orgs     []domain.Organization
	projects []domain.Project
	branches []domain.Branch
	loading  domain.LoadingState
}

func NewMachine(gateway domain.Gateway) *Machine {
	return &Machine{
		gateway: gateway,
		sel:     domain.Selection{ConnectionType: domain.ConnectionExisting},
	}
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Selection:     m.sel,
		Organizations: make([]domain.Organization, len(m.orgs)),
		Projects:      make([]domain.Project, len(m.projects)),
		Branches:      make([]domain.Branch, len(m.branches)),
		Loading:       m.loading,
	}
	copy(snap.Organizations, m.orgs)
	copy(snap.Projects, m.projects)
	copy(snap.Branches, m.branches)
	return snap
}

// Reset clears the whole selection and all cached lists. Safe to call while a
// transition is in flight; the sequence bump makes that transition drop its
// result.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.sel = domain.Selection{ConnectionType: domain.ConnectionExisting}
	m.orgs = nil
	m.projects = nil
	m.branches = nil
	m.loading = domain.LoadingState{}

	logger.Log("State: Selection reset")
}

// RefreshOrganizations fetches the organization list. After re-authentication
// a changed organization set means the identity changed, which clears the
// whole selection before the new list is installed.
func (m *Machine) RefreshOrganizations(ctx context.Context) error {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	m.seq++
	mySeq := m.seq
	m.loading.Orgs = true
	m.mu.Unlock()

	orgs, err := m.gateway.ListOrganizations(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq != mySeq {
		logger.Log("State: Dropping stale organization list")
		return nil
	}
	m.loading.Orgs = false

	if err != nil {
		return err
	}

	if len(m.orgs) > 0 && !sameOrgSet(m.orgs, orgs) {
		logger.Log("State: Organization set changed, clearing selection")
		m.sel = domain.Selection{ConnectionType: domain.ConnectionExisting}
		m.projects = nil
		m.branches = nil
	}

	m.orgs = orgs
	return nil
}

// SelectOrg sets the organization and clears every dependent level before the
// project list for the new organization is fetched.
func (m *Machine) SelectOrg(ctx context.Context, orgID string) error {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	m.seq++
	mySeq := m.seq

	m.sel.OrgID = orgID
	m.sel.OrgName = orgNameFor(m.orgs, orgID)
	m.clearProjectLocked()
	m.projects = nil
	m.branches = nil
	m.loading.Projects = true
	m.mu.Unlock()

	logger.Log("State: Selected org %s", orgID)

	projects, err := m.gateway.ListProjects(ctx, orgID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq != mySeq {
		logger.Log("State: Dropping stale project list for org %s", orgID)
		return nil
	}
	m.loading.Projects = false

	if err != nil {
		return err
	}

	m.projects = projects
	return nil
}

// SelectProject sets the project and fetches its branches. The project must
// exist in the loaded project list; if it does not, the list is re-fetched
// once before the selection is rejected. After the branch list loads, a
// previously selected branch (or parent branch, depending on the connection
// type) is restored if it still exists.
func (m *Machine) SelectProject(ctx context.Context, projectID string) error {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	startSeq := m.seq
	orgID := m.sel.OrgID
	project, found := projectFor(m.projects, projectID)
	m.mu.Unlock()

	if !found {
		fetched, err := m.gateway.ListProjects(ctx, orgID)
		if err != nil {
			return err
		}

		m.mu.Lock()
		if m.seq != startSeq {
			m.mu.Unlock()
			return nil
		}
		m.projects = fetched
		project, found = projectFor(fetched, projectID)
		m.mu.Unlock()

		if !found {
			return ErrProjectNotFound
		}
	}

	m.mu.Lock()
	if m.seq != startSeq {
		m.mu.Unlock()
		return nil
	}
	m.seq++
	mySeq := m.seq

	prevBranchID := m.sel.BranchID
	prevParentID := m.sel.ParentBranchID

	m.sel.ProjectID = project.ID
	m.sel.ProjectName = project.Name
	m.clearBranchLocked()
	m.branches = nil
	m.loading.Branches = true
	m.mu.Unlock()

	logger.Log("State: Selected project %s", project.ID)

	branches, err := m.gateway.ListBranches(ctx, project.ID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq != mySeq {
		logger.Log("State: Dropping stale branch list for project %s", project.ID)
		return nil
	}
	m.loading.Branches = false

	if err != nil {
		return err
	}

	m.branches = branches
	m.restoreBranchLocked(prevBranchID, prevParentID)
	return nil
}

// SelectBranch routes the branch into the primary or parent-branch slot
// depending on the connection type. The branch must exist in the loaded
// branch list, with the same fetch-then-retry-once fallback as SelectProject.
func (m *Machine) SelectBranch(ctx context.Context, branchID string) error {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	startSeq := m.seq
	projectID := m.sel.ProjectID
	branch, found := branchFor(m.branches, branchID)
	m.mu.Unlock()

	if projectID == "" {
		return ErrNoProjectSelected
	}

	if !found {
		fetched, err := m.gateway.ListBranches(ctx, projectID)
		if err != nil {
			return err
		}

		m.mu.Lock()
		if m.seq != startSeq {
			m.mu.Unlock()
			return nil
		}
		m.branches = fetched
		branch, found = branchFor(fetched, branchID)
		m.mu.Unlock()

		if !found {
			return ErrBranchNotFound
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq != startSeq {
		return nil
	}
	m.seq++

	switch m.sel.ConnectionType {
	case domain.ConnectionNew:
		m.sel.ParentBranchID = branch.ID
		m.sel.ParentBranchName = branch.Name
	default:
		m.sel.BranchID = branch.ID
		m.sel.BranchName = branch.Name
	}

	logger.Log("State: Selected branch %s (%s)", branch.ID, m.sel.ConnectionType)
	return nil
}

// SetConnectionType flips the mode flag. It does not clear other fields; it
// changes which slot future SelectBranch calls populate and which slot is
// eligible for restoration.
func (m *Machine) SetConnectionType(tp domain.ConnectionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel.ConnectionType = tp
}

// restoreBranchLocked re-adopts the branch previously held in the slot that
// matches the active connection type, if it survived the re-fetch. The other
// slot stays cleared.
func (m *Machine) restoreBranchLocked(prevBranchID, prevParentID string) {
	switch m.sel.ConnectionType {
	case domain.ConnectionNew:
		if branch, ok := branchFor(m.branches, prevParentID); ok {
			m.sel.ParentBranchID = branch.ID
			m.sel.ParentBranchName = branch.Name
			logger.Log("State: Restored parent branch %s", branch.ID)
		}
	default:
		if branch, ok := branchFor(m.branches, prevBranchID); ok {
			m.sel.BranchID = branch.ID
			m.sel.BranchName = branch.Name
			logger.Log("State: Restored branch %s", branch.ID)
		}
	}
}

func (m *Machine) clearProjectLocked() {
	m.sel.ProjectID = ""
	m.sel.ProjectName = ""
	m.clearBranchLocked()
}

func (m *Machine) clearBranchLocked() {
	m.sel.BranchID = ""
	m.sel.BranchName = ""
	m.sel.ParentBranchID = ""
	m.sel.ParentBranchName = ""
}

func orgNameFor(orgs []domain.Organization, id string) string {
	for _, org := range orgs {
		if org.ID == id {
			return org.Name
		}
	}
	return ""
}

func projectFor(projects []domain.Project, id string) (domain.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

func branchFor(branches []domain.Branch, id string) (domain.Branch, bool) {
	if id == "" {
		return domain.Branch{}, false
	}
	for _, b := range branches {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Branch{}, false
}

func sameOrgSet(a []domain.Organization, b []domain.Organization) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]bool, len(a))
	for _, org := range a {
		ids[org.ID] = true
	}
	for _, org := range b {
		if !ids[org.ID] {
			return false
		}
	}
	return true
}
