package domain

import "time"

type ConnectionType string

const (
	ConnectionExisting ConnectionType = "existing"
	ConnectionNew      ConnectionType = "new"
)

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	OrgID string `json:"org_id"`
}

type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type Database struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
}

type Role struct {
	Name string `json:"name"`
}

type EndpointType string

const (
	EndpointReadWrite EndpointType = "read_write"
	EndpointReadOnly  EndpointType = "read_only"
)

type Endpoint struct {
	ID   string       `json:"id"`
	Host string       `json:"host"`
	Type EndpointType `json:"type"`
}

// ConnectionInfo is one ready-to-use connection tuple for a branch database.
type ConnectionInfo struct {
	Host     string
	Database string
	User     string
	Password string
}

// Selection is the current org/project/branch choice. A non-empty ProjectID
// implies a non-empty OrgID; a non-empty BranchID or ParentBranchID implies a
// non-empty ProjectID.
type Selection struct {
	OrgID            string
	OrgName          string
	ProjectID        string
	ProjectName      string
	BranchID         string
	BranchName       string
	ParentBranchID   string
	ParentBranchName string
	ConnectionType   ConnectionType
}

// LoadingState tracks per-tier fetch progress so the panel can show partial
// loading indicators.
type LoadingState struct {
	Orgs     bool
	Projects bool
	Branches bool
}

// ConnectionState describes the active local session, if any.
type ConnectionState struct {
	Active      bool
	Connections []ConnectionInfo
	Database    string
	Role        string
	StartedAt   time.Time
}

// Profile is a stored credential profile: a named personal API token plus the
// API base URL it belongs to. Exactly one profile is active at a time.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Token    string `json:"token"`
	BaseURL  string `json:"base_url"`
	IsActive bool   `json:"is_active"`
}
