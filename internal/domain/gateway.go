package domain

import "context"

// Gateway exposes the typed operations of the resource API. Implementations
// normalize loosely shaped upstream responses to the types below.
type Gateway interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)

	ListProjects(ctx context.Context, orgID string) ([]Project, error)

	GetProject(ctx context.Context, projectID string) (*Project, error)

	ListBranches(ctx context.Context, projectID string) ([]Branch, error)

	GetBranch(ctx context.Context, projectID, branchID string) (*Branch, error)

	CreateBranch(ctx context.Context, projectID, name, parentID string) (*Branch, error)

	ListDatabases(ctx context.Context, projectID, branchID string) ([]Database, error)

	ListRoles(ctx context.Context, projectID, branchID string) ([]Role, error)

	ListEndpoints(ctx context.Context, projectID, branchID string) ([]Endpoint, error)

	CreateRole(ctx context.Context, projectID, branchID, name string) (*Role, error)

	DeleteRole(ctx context.Context, projectID, branchID, name string) error

	RevealPassword(ctx context.Context, projectID, branchID, roleName string) (string, error)

	ResetPassword(ctx context.Context, projectID, branchID, roleName string) error

	CreateAPIKey(ctx context.Context, name string) (string, error)

	GetBranchConnectionInfo(ctx context.Context, projectID, branchID string) ([]ConnectionInfo, error)
}
