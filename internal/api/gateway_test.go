package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw := NewGateway(NewClient(server.URL, &fakeTokens{access: "tok"}))
	gw.retryDelay = 0
	return gw, server
}

func TestListProjectsRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"projects":[{"id":"p1","name":"x"}]}`))
	}))

	projects, err := gw.ListProjects(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Errorf("Unexpected projects: %+v", projects)
	}
}

func TestListProjectsGivesUpAfterThreeAttempts(t *testing.T) {
	attempts := 0
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := gw.ListProjects(context.Background(), "org-1")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}

	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts)
	}
}

func TestListProjectsSendsOrgFilter(t *testing.T) {
	var gotOrg string
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrg = r.URL.Query().Get("org_id")
		w.Write([]byte(`[]`))
	}))

	if _, err := gw.ListProjects(context.Background(), "org-42"); err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if gotOrg != "org-42" {
		t.Errorf("Expected org_id query 'org-42', got %q", gotOrg)
	}
}

func TestGetBranchConnectionInfo(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/p1/branches/b1/endpoints":
			w.Write([]byte(`{"endpoints":[{"id":"ep1","host":"h","type":"read_write"}]}`))
		case "/api/v2/projects/p1/branches/b1/databases":
			w.Write([]byte(`{"databases":[{"name":"app","owner_name":"app_owner"}]}`))
		case "/api/v2/projects/p1/branches/b1/roles/app_owner/reveal_password":
			w.Write([]byte(`{"password":"s3cret"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	infos, err := gw.GetBranchConnectionInfo(context.Background(), "p1", "b1")
	if err != nil {
		t.Fatalf("GetBranchConnectionInfo() error = %v", err)
	}

	if len(infos) != 1 {
		t.Fatalf("Expected 1 connection tuple, got %d", len(infos))
	}

	got := infos[0]
	if got.Host != "h" || got.Database != "app" || got.User != "app_owner" || got.Password != "s3cret" {
		t.Errorf("Unexpected tuple: %+v", got)
	}
}

func TestGetBranchConnectionInfoDropsFailedOwnerLookups(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/p1/branches/b1/endpoints":
			w.Write([]byte(`{"endpoints":[{"id":"ep1","host":"h","type":"read_write"}]}`))
		case "/api/v2/projects/p1/branches/b1/databases":
			w.Write([]byte(`{"databases":[{"name":"good","owner_name":"good_owner"},{"name":"bad","owner_name":"bad_owner"}]}`))
		case "/api/v2/projects/p1/branches/b1/roles/good_owner/reveal_password":
			w.Write([]byte(`{"password":"ok"}`))
		case "/api/v2/projects/p1/branches/b1/roles/bad_owner/reveal_password":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	infos, err := gw.GetBranchConnectionInfo(context.Background(), "p1", "b1")
	if err != nil {
		t.Fatalf("Expected partial success, got error %v", err)
	}

	if len(infos) != 1 {
		t.Fatalf("Expected exactly the successful tuple, got %d", len(infos))
	}
	if infos[0].Database != "good" {
		t.Errorf("Expected database 'good', got %s", infos[0].Database)
	}
}

func TestGetBranchConnectionInfoNoReadWriteEndpoint(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/projects/p1/branches/b1/endpoints" {
			w.Write([]byte(`{"endpoints":[{"id":"ep1","host":"h","type":"read_only"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := gw.GetBranchConnectionInfo(context.Background(), "p1", "b1")
	if !errors.Is(err, ErrNoReadWriteEndpoint) {
		t.Fatalf("Expected ErrNoReadWriteEndpoint, got %v", err)
	}
}

func TestGetBranchConnectionInfoNoUsableDatabases(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/p1/branches/b1/endpoints":
			w.Write([]byte(`{"endpoints":[{"id":"ep1","host":"h","type":"read_write"}]}`))
		case "/api/v2/projects/p1/branches/b1/databases":
			w.Write([]byte(`{"databases":[{"name":"orphan"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	_, err := gw.GetBranchConnectionInfo(context.Background(), "p1", "b1")
	if !errors.Is(err, ErrNoDatabasesFound) {
		t.Fatalf("Expected ErrNoDatabasesFound, got %v", err)
	}
}

func TestResolveReadWriteHostUsesCache(t *testing.T) {
	endpointCalls := 0
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/projects/p1/branches/b1/endpoints":
			endpointCalls++
			w.Write([]byte(`{"endpoints":[{"id":"ep1","host":"h","type":"read_write"}]}`))
		case "/api/v2/projects/p1/branches/b1/databases":
			w.Write([]byte(`{"databases":[{"name":"app","owner_name":"o"}]}`))
		case "/api/v2/projects/p1/branches/b1/roles/o/reveal_password":
			w.Write([]byte(`{"password":"x"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := gw.GetBranchConnectionInfo(ctx, "p1", "b1"); err != nil {
			t.Fatalf("GetBranchConnectionInfo() error = %v", err)
		}
	}

	if endpointCalls != 1 {
		t.Errorf("Expected endpoint list to be fetched once and cached, got %d fetches", endpointCalls)
	}

	gw.InvalidateCaches()
	if _, err := gw.GetBranchConnectionInfo(ctx, "p1", "b1"); err != nil {
		t.Fatalf("GetBranchConnectionInfo() after invalidation error = %v", err)
	}
	if endpointCalls != 2 {
		t.Errorf("Expected a fresh endpoint fetch after invalidation, got %d total", endpointCalls)
	}
}

func TestListOrganizations(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/users/me/organizations" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"organizations":[{"id":"org-1","name":"Acme"}]}`))
	}))

	orgs, err := gw.ListOrganizations(context.Background())
	if err != nil {
		t.Fatalf("ListOrganizations() error = %v", err)
	}

	if len(orgs) != 1 || orgs[0].ID != "org-1" || orgs[0].Name != "Acme" {
		t.Errorf("Unexpected organizations: %+v", orgs)
	}
}

func TestCreateBranchSendsParent(t *testing.T) {
	var gotBody string
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"branch":{"id":"b2","name":"feature","parent_id":"b1"}}`))
	}))

	branch, err := gw.CreateBranch(context.Background(), "p1", "feature", "b1")
	if err != nil {
		t.Fatalf("CreateBranch() error = %v", err)
	}

	if branch.ID != "b2" || branch.ParentID != "b1" {
		t.Errorf("Unexpected branch: %+v", branch)
	}
	if gotBody == "" {
		t.Fatal("Expected request body")
	}
}
