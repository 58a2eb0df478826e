package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/eliasnord/neonpane/internal/cache"
	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
)

const (
	// EndpointCacheTTL is how long a resolved read-write endpoint host stays
	// usable without a re-fetch.
	EndpointCacheTTL = time.Hour

	// listProjectsAttempts bounds the project-listing retry. This retry
	// recovers flaky listing calls and is independent of the auth retry in
	// Client.Execute.
	listProjectsAttempts = 3
)

// Gateway implements domain.Gateway on top of Client, normalizing the loosely
// typed upstream responses.
type Gateway struct {
	client        *Client
	endpointCache *cache.Cache[string]
	retryDelay    time.Duration
}

func NewGateway(client *Client) *Gateway {
	return &Gateway{
		client:        client,
		endpointCache: cache.New[string](EndpointCacheTTL),
		retryDelay:    time.Second,
	}
}

// InvalidateCaches drops the resolved endpoint hosts. Wired to the manual
// refresh intent.
func (g *Gateway) InvalidateCaches() {
	g.endpointCache.InvalidateAll()
}

func (g *Gateway) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, "/users/me/organizations", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Organization](raw, "organizations", "organization")
}

func (g *Gateway) ListProjects(ctx context.Context, orgID string) ([]domain.Project, error) {
	path := "/projects?org_id=" + url.QueryEscape(orgID)

	var lastErr error
	for attempt := 1; attempt <= listProjectsAttempts; attempt++ {
		raw, err := g.client.Execute(ctx, http.MethodGet, path, nil)
		if err == nil {
			return decodeList[domain.Project](raw, "projects", "project")
		}

		lastErr = err
		logger.LogError("LIST_PROJECTS", orgID, err)

		if attempt < listProjectsAttempts {
			select {
			case <-time.After(g.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to list projects after %d attempts: %w", listProjectsAttempts, lastErr)
}

func (g *Gateway) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, "/projects/"+projectID, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Project](raw, "project", "projects")
}

func (g *Gateway) ListBranches(ctx context.Context, projectID string) ([]domain.Branch, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, "/projects/"+projectID+"/branches", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Branch](raw, "branches", "branch")
}

func (g *Gateway) GetBranch(ctx context.Context, projectID, branchID string) (*domain.Branch, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, "/projects/"+projectID+"/branches/"+branchID, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[domain.Branch](raw, "branch", "branches")
}

func (g *Gateway) CreateBranch(ctx context.Context, projectID, name, parentID string) (*domain.Branch, error) {
	body := map[string]any{
		"branch": map[string]any{
			"name": name,
		},
	}
	if parentID != "" {
		body["branch"].(map[string]any)["parent_id"] = parentID
	}

	raw, err := g.client.Execute(ctx, http.MethodPost, "/projects/"+projectID+"/branches", body)
	if err != nil {
		return nil, err
	}

	logger.Log("API: Created branch %s in project %s", name, projectID)
	return decodeOne[domain.Branch](raw, "branch", "branches")
}

func (g *Gateway) ListDatabases(ctx context.Context, projectID, branchID string) ([]domain.Database, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, branchPath(projectID, branchID)+"/databases", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Database](raw, "databases", "database")
}

func (g *Gateway) ListRoles(ctx context.Context, projectID, branchID string) ([]domain.Role, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, branchPath(projectID, branchID)+"/roles", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Role](raw, "roles", "role")
}

func (g *Gateway) ListEndpoints(ctx context.Context, projectID, branchID string) ([]domain.Endpoint, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, branchPath(projectID, branchID)+"/endpoints", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Endpoint](raw, "endpoints", "endpoint")
}

func (g *Gateway) CreateRole(ctx context.Context, projectID, branchID, name string) (*domain.Role, error) {
	body := map[string]any{
		"role": map[string]string{"name": name},
	}

	raw, err := g.client.Execute(ctx, http.MethodPost, branchPath(projectID, branchID)+"/roles", body)
	if err != nil {
		return nil, err
	}

	logger.Log("API: Created role %s on branch %s", name, branchID)
	return decodeOne[domain.Role](raw, "role", "roles")
}

func (g *Gateway) DeleteRole(ctx context.Context, projectID, branchID, name string) error {
	_, err := g.client.Execute(ctx, http.MethodDelete, branchPath(projectID, branchID)+"/roles/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}

	logger.Log("API: Deleted role %s on branch %s", name, branchID)
	return nil
}

func (g *Gateway) RevealPassword(ctx context.Context, projectID, branchID, roleName string) (string, error) {
	raw, err := g.client.Execute(ctx, http.MethodGet, branchPath(projectID, branchID)+"/roles/"+url.PathEscape(roleName)+"/reveal_password", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected reveal_password response: %w", err)
	}
	if resp.Password == "" {
		return "", fmt.Errorf("no password in reveal_password response")
	}

	return resp.Password, nil
}

func (g *Gateway) ResetPassword(ctx context.Context, projectID, branchID, roleName string) error {
	_, err := g.client.Execute(ctx, http.MethodPost, branchPath(projectID, branchID)+"/roles/"+url.PathEscape(roleName)+"/reset_password", nil)
	return err
}

func (g *Gateway) CreateAPIKey(ctx context.Context, name string) (string, error) {
	raw, err := g.client.Execute(ctx, http.MethodPost, "/api_keys", map[string]string{"key_name": name})
	if err != nil {
		return "", err
	}

	var resp struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected api_keys response: %w", err)
	}

	return resp.Key, nil
}

// GetBranchConnectionInfo resolves the branch's read-write endpoint host,
// lists its databases and builds one connection tuple per database whose
// owner password could be revealed. Databases whose owner lookup fails are
// dropped; the call fails only when zero tuples could be built.
func (g *Gateway) GetBranchConnectionInfo(ctx context.Context, projectID, branchID string) ([]domain.ConnectionInfo, error) {
	host, err := g.resolveReadWriteHost(ctx, projectID, branchID)
	if err != nil {
		return nil, err
	}

	databases, err := g.ListDatabases(ctx, projectID, branchID)
	if err != nil {
		return nil, err
	}

	infos := make([]domain.ConnectionInfo, 0, len(databases))
	for _, db := range databases {
		if db.OwnerName == "" {
			continue
		}

		password, err := g.RevealPassword(ctx, projectID, branchID, db.OwnerName)
		if err != nil {
			logger.LogError("REVEAL_PASSWORD", db.OwnerName, err)
			continue
		}

		infos = append(infos, domain.ConnectionInfo{
			Host:     host,
			Database: db.Name,
			User:     db.OwnerName,
			Password: password,
		})
	}

	if len(infos) == 0 {
		return nil, ErrNoDatabasesFound
	}

	logger.Log("API: Built %d connection tuples for branch %s", len(infos), branchID)
	return infos, nil
}

func (g *Gateway) resolveReadWriteHost(ctx context.Context, projectID, branchID string) (string, error) {
	cacheKey := projectID + "/" + branchID
	if host, ok := g.endpointCache.Get(cacheKey); ok {
		return host, nil
	}

	endpoints, err := g.ListEndpoints(ctx, projectID, branchID)
	if err != nil {
		return "", err
	}

	for _, ep := range endpoints {
		if ep.Type == domain.EndpointReadWrite && ep.Host != "" {
			g.endpointCache.Set(cacheKey, ep.Host)
			return ep.Host, nil
		}
	}

	return "", ErrNoReadWriteEndpoint
}

func branchPath(projectID, branchID string) string {
	return "/projects/" + projectID + "/branches/" + branchID
}
